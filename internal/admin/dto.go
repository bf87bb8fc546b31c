// AngelaMos | 2026
// dto.go

package admin

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/carterperez-dev/medassist/internal/core"
)

// AdminFlag is an optional boolean that clients send in several shapes.
// true, 1, "1" and "true" are true; anything else present is false. Null or
// absent leaves Set false so no override is applied.
type AdminFlag struct {
	Set   bool
	Value bool
}

func (f *AdminFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = AdminFlag{}
		return nil
	}

	f.Set = true
	f.Value = false

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		f.Value = t
	case float64:
		f.Value = t == 1
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		f.Value = s == "1" || s == "true"
	}

	return nil
}

// Ptr returns the override, or nil when none was supplied.
func (f AdminFlag) Ptr() *bool {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

type ActorRequest struct {
	UserID core.RawID `json:"userId"`
}

type ChangeStatusRequest struct {
	UserID  core.RawID `json:"userId"`
	Status  string     `json:"status"`
	IsAdmin AdminFlag  `json:"isAdmin"`
}

const (
	QueryAll = "all"
	QueryGet = "get"
)

type QueryRequest struct {
	UserID core.RawID `json:"userId"`
	Query  string     `json:"query"`
	Type   string     `json:"type"`
}

// QueryResponse carries a list for type all and a single row or null for
// type get.
type QueryResponse struct {
	Result        any    `json:"result"`
	Count         int    `json:"count"`
	ExecutionTime string `json:"executionTime"`
}
