// Package template resolves {{key.path}} placeholders in node configuration against an execution context.
package template

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

var placeholder = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Resolve walks maps and slices and resolves every string it finds.
func Resolve(value any, vars map[string]any) any {
	switch v := value.(type) {
	case string:
		return ResolveString(v, vars)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Resolve(item, vars)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Resolve(item, vars)
		}

		return out
	default:
		return value
	}
}

// ResolveString substitutes placeholders in s.
//
// When s is exactly one placeholder that resolves, the raw value is returned so
// objects and arrays survive. Otherwise every resolvable placeholder is
// stringified in place and unresolvable ones are left untouched.
func ResolveString(s string, vars map[string]any) any {
	if !strings.Contains(s, "{{") {
		return s
	}

	if m := placeholder.FindStringSubmatchIndex(s); m != nil && m[0] == 0 && m[1] == len(s) {
		if value, ok := Lookup(vars, s[m[2]:m[3]]); ok {
			return value
		}

		return s
	}

	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]

		value, ok := Lookup(vars, key)
		if !ok {
			return match
		}

		return Stringify(value)
	})
}

// ResolveToString is ResolveString with the result stringified.
func ResolveToString(s string, vars map[string]any) string {
	return Stringify(ResolveString(s, vars))
}

// HasPlaceholder reports whether s contains at least one placeholder.
func HasPlaceholder(s string) bool {
	return placeholder.MatchString(s)
}

// Lookup resolves a dot separated path such as "student.address.city" or "items.0".
func Lookup(vars map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}

	if value, ok := vars[path]; ok {
		return value, true
	}

	var current any = vars

	for _, part := range strings.Split(path, ".") {
		next, ok := child(current, part)
		if !ok {
			return nil, false
		}

		current = next
	}

	return current, true
}

func child(parent any, key string) (any, bool) {
	switch p := parent.(type) {
	case map[string]any:
		value, ok := p[key]

		return value, ok
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(p) {
			return nil, false
		}

		return p[idx], true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(parent)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		value := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}

		return value.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}

		return rv.Index(idx).Interface(), true
	case reflect.Struct:
		return structField(rv, key)
	default:
		return nil, false
	}
}

// structField matches key against the json tag first, then the field name.
func structField(rv reflect.Value, key string) (any, bool) {
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == key || strings.EqualFold(field.Name, key) {
			return rv.Field(i).Interface(), true
		}
	}

	return nil, false
}

// Stringify renders a resolved value the way it is embedded inside a larger string.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case fmt.Stringer:
		return v.String()
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}
