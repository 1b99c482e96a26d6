package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	vars := map[string]any{
		"score":     72,
		"attempts":  2.0,
		"status":    "submitted",
		"late":      false,
		"student":   map[string]any{"grade": "B", "absences": 4},
		"threshold": "50",
		"comments":  nil,
	}

	tests := []struct {
		expr     string
		expected bool
	}{
		{"score > 50", true},
		{"score >= 72 && attempts < 3", true},
		{"score > 90 || status == 'submitted'", true},
		{"status === \"submitted\"", true},
		{"status != 'graded'", true},
		{"!late", true},
		{"!(score > 50)", false},
		{"student.grade == 'B' && student.absences <= 4", true},
		{"score > threshold", true},
		{"comments == null", true},
		{"late", false},
		{"score", true},
		{"-1 < attempts", true},
		{"(score > 90 || attempts == 2) && !late", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := Evaluate(tt.expr, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	vars := map[string]any{"score": 10}

	tests := []struct {
		expr    string
		wantErr error
	}{
		{"unknownVar > 3", ErrUndefinedVariable},
		{"score >", ErrSyntax},
		{"score > 3 &", ErrSyntax},
		{"(score > 3", ErrSyntax},
		{"'open", ErrSyntax},
		{"score = 10", ErrSyntax},
		{"score > 3 4", ErrSyntax},
		{"score()", ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := Evaluate(tt.expr, vars)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, result)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		left     any
		op       string
		right    any
		expected bool
	}{
		{60, ">", 50.0, true},
		{"60", ">", "50", true},
		{"9", "<", "10", true},
		{"apple", "<", "banana", true},
		{"60", "==", 60, true},
		{true, "==", "true", true},
		{nil, "==", nil, true},
		{nil, ">", 1, false},
		{map[string]any{"a": 1}, "==", map[string]any{"a": 1}, true},
		{"x", "!=", "y", true},
	}

	for _, tt := range tests {
		result, ok := Compare(tt.left, tt.op, tt.right)
		assert.True(t, ok)
		assert.Equal(t, tt.expected, result, "%v %s %v", tt.left, tt.op, tt.right)
	}

	_, ok := Compare(1, "=~", 2)
	assert.False(t, ok)
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy("false"))
	assert.False(t, Truthy(0))
	assert.True(t, Truthy("0"))
	assert.True(t, Truthy("yes"))
	assert.True(t, Truthy(1.5))
	assert.True(t, Truthy([]any{}))
}
