// AngelaMos | 2026
// ids.go

package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseID parses a user-supplied identifier strictly.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("parse id %q: %w", raw, ErrInvalidInput)
	}
	return id, nil
}

// ParseLeadingID accepts the leading run of digits, so "42abc" and "42.0"
// both resolve to 42.
func ParseLeadingID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("parse id %q: %w", raw, ErrInvalidInput)
	}
	return ParseID(s[:end])
}

// RawID is an identifier taken from a JSON body, where clients send either
// a number or a string.
type RawID string

func (r *RawID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*r = RawID(n.String())
	return nil
}

func (r RawID) String() string {
	return string(r)
}
