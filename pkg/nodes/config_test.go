package nodes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAccessors(t *testing.T) {
	vars := map[string]any{
		"limit":    "25",
		"students": []any{map[string]any{"email": "a@school.edu"}, map[string]any{"email": "b@school.edu"}},
		"flag":     "true",
	}

	config := map[string]any{
		"title":    "  Week {{limit}} quiz ",
		"limit":    "{{limit}}",
		"to":       "{{students}}",
		"cc":       "x@school.edu, y@school.edu",
		"enabled":  "{{flag}}",
		"delay":    "1500",
		"timeout":  "2m",
		"bad":      "soon",
		"payload":  `{"a":1}`,
		"itemsRaw": `[1,2]`,
	}

	assert.Equal(t, "Week 25 quiz", String(config, "title", vars))
	assert.Equal(t, 25, Int(config, "limit", vars, 10))
	assert.Equal(t, 10, Int(config, "missing", vars, 10))
	assert.InDelta(t, 25.0, Float(config, "limit", vars, 0), 0.0001)
	assert.Equal(t, []string{"a@school.edu", "b@school.edu"}, Strings(config, "to", vars))
	assert.Equal(t, []string{"x@school.edu", "y@school.edu"}, Strings(config, "cc", vars))
	assert.True(t, Bool(config, "enabled", vars, false))
	assert.False(t, Bool(config, "missing", vars, false))
	assert.Equal(t, map[string]any{"a": 1.0}, Map(config, "payload", vars))

	d, err := Duration(config, "delay", vars, 0)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = Duration(config, "timeout", vars, 0)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)

	_, err = Duration(config, "bad", vars, 0)
	require.Error(t, err)

	_, err = RequiredString(config, "missing", vars)
	require.EqualError(t, err, "missing is required")
}

func TestToSlice(t *testing.T) {
	items, ok := ToSlice([]string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, items)

	items, ok = ToSlice(`[1, "two"]`)
	require.True(t, ok)
	assert.Equal(t, []any{1.0, "two"}, items)

	_, ok = ToSlice("students")
	assert.False(t, ok)

	_, ok = ToSlice(42)
	assert.False(t, ok)
}

func TestMapsAndNormalize(t *testing.T) {
	config := map[string]any{
		"fields": `[{"name":"rating","type":"number"},"skip",{"name":"comment"}]`,
	}

	fields := Maps(config, "fields", nil)
	require.Len(t, fields, 2)
	assert.Equal(t, "comment", fields[1]["name"])

	type student struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	normalized, err := Normalize([]student{{ID: "s-1", Email: "ana@school.edu"}})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"id": "s-1", "email": "ana@school.edu"}}, normalized)
}
