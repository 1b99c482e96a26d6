// Package nodes holds helpers shared by the node executors under pkg/nodes.
package nodes

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/classflow/pkg/expression"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/template"
	json "github.com/goccy/go-json"
)

// Value returns config[key] with templates resolved against vars.
func Value(config map[string]any, key string, vars map[string]any) any {
	raw, ok := config[key]
	if !ok {
		return nil
	}

	return template.Resolve(raw, vars)
}

// String resolves config[key] and renders it as a string.
func String(config map[string]any, key string, vars map[string]any) string {
	return strings.TrimSpace(template.Stringify(Value(config, key, vars)))
}

// RequiredString is String that fails when the result is empty.
func RequiredString(config map[string]any, key string, vars map[string]any) (string, error) {
	value := String(config, key, vars)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}

	return value, nil
}

// Int resolves config[key] as an integer, falling back to def.
func Int(config map[string]any, key string, vars map[string]any, def int) int {
	if n, ok := expression.ToNumber(Value(config, key, vars)); ok {
		return int(n)
	}

	return def
}

// Float resolves config[key] as a float, falling back to def.
func Float(config map[string]any, key string, vars map[string]any, def float64) float64 {
	if n, ok := expression.ToNumber(Value(config, key, vars)); ok {
		return n
	}

	return def
}

// Bool resolves config[key] as a boolean, falling back to def.
func Bool(config map[string]any, key string, vars map[string]any, def bool) bool {
	switch v := Value(config, key, vars).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}

	return def
}

// Duration accepts Go duration strings ("90s") or a number of milliseconds.
func Duration(config map[string]any, key string, vars map[string]any, def time.Duration) (time.Duration, error) {
	value := Value(config, key, vars)
	if value == nil || value == "" {
		return def, nil
	}

	if n, ok := expression.ToNumber(value); ok {
		return time.Duration(n * float64(time.Millisecond)), nil
	}

	d, err := time.ParseDuration(template.Stringify(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}

// Strings resolves config[key] into a list. Strings are split on commas.
func Strings(config map[string]any, key string, vars map[string]any) []string {
	return ToStrings(Value(config, key, vars))
}

func ToStrings(value any) []string {
	var out []string

	appendPart := func(s string) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	if s, ok := value.(string); ok {
		appendPart(s)

		return out
	}

	items, ok := ToSlice(value)
	if !ok {
		return out
	}

	for _, item := range items {
		if m, isMap := item.(map[string]any); isMap {
			if email, found := m["email"].(string); found {
				appendPart(email)

				continue
			}
		}

		appendPart(template.Stringify(item))
	}

	return out
}

// ToSlice converts any slice or array into []any. A JSON array string is decoded.
func ToSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if !strings.HasPrefix(trimmed, "[") {
			return nil, false
		}

		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, false
		}

		return items, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	return items, true
}

// Map resolves config[key] into a map, decoding JSON object strings.
func Map(config map[string]any, key string, vars map[string]any) map[string]any {
	switch v := Value(config, key, vars).(type) {
	case map[string]any:
		return v
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err == nil {
			return m
		}
	}

	return nil
}

// Maps resolves config[key] into a list of objects, skipping entries that are not objects.
func Maps(config map[string]any, key string, vars map[string]any) []map[string]any {
	items, ok := ToSlice(Value(config, key, vars))
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(items))

	for _, item := range items {
		if m, isMap := item.(map[string]any); isMap {
			out = append(out, m)
		}
	}

	return out
}

// Normalize turns typed collaborator results into plain JSON values, so templates,
// loops and persisted records all see the same shape.
func Normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	return out, nil
}

// NotConfigured is the failure returned when a node's collaborator is missing.
func NotConfigured(nodeType, service string) *protocol.Result {
	return protocol.Failure(fmt.Sprintf("%s: %s service is not configured", nodeType, service))
}
