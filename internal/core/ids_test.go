// AngelaMos | 2026
// ids_test.go

package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "42abc", "4.2", "abc"} {
		_, err := ParseID(raw)
		assert.True(t, errors.Is(err, ErrInvalidInput), raw)
	}
}

func TestParseLeadingID(t *testing.T) {
	tests := map[string]int64{
		"42":    42,
		"42abc": 42,
		"42.0":  42,
		" 7x ":  7,
	}
	for raw, want := range tests {
		got, err := ParseLeadingID(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "abc", "-1", "0abc"} {
		_, err := ParseLeadingID(raw)
		assert.Error(t, err, raw)
	}
}

func TestRawID_UnmarshalJSON(t *testing.T) {
	var body struct {
		UserID RawID `json:"userId"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"userId": 12}`), &body))
	assert.Equal(t, "12", body.UserID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"userId": "13"}`), &body))
	assert.Equal(t, "13", body.UserID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"userId": null}`), &body))
	assert.Empty(t, body.UserID.String())

	assert.Error(t, json.Unmarshal([]byte(`{"userId": true}`), &body))
}
