package expression

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/dukex/classflow/pkg/template"
)

// Compare applies op to left and right. ok is false for an unknown operator.
//
// Numbers, and strings that parse as numbers, compare numerically. Booleans
// compare by value for equality. Anything else compares as strings.
func Compare(left any, op string, right any) (result bool, ok bool) {
	switch op {
	case "==", "===":
		return equal(left, right), true
	case "!=", "!==":
		return !equal(left, right), true
	case ">", "<", ">=", "<=":
	default:
		return false, false
	}

	if left == nil || right == nil {
		return false, true
	}

	if l, lok := ToNumber(left); lok {
		if r, rok := ToNumber(right); rok {
			return order(compareFloat(l, r), op), true
		}
	}

	return order(strings.Compare(template.Stringify(left), template.Stringify(right)), op), true
}

func order(cmp int, op string) bool {
	switch op {
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case ">=":
		return cmp >= 0
	default:
		return cmp <= 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func equal(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}

	if l, lok := ToNumber(left); lok {
		if r, rok := ToNumber(right); rok {
			return l == r
		}
	}

	lb, lIsBool := left.(bool)
	rb, rIsBool := right.(bool)

	if lIsBool && rIsBool {
		return lb == rb
	}

	if lIsBool != rIsBool {
		return template.Stringify(left) == template.Stringify(right)
	}

	if isContainer(left) || isContainer(right) {
		return reflect.DeepEqual(left, right)
	}

	return template.Stringify(left) == template.Stringify(right)
}

func isContainer(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		return true
	default:
		return false
	}
}

// ToNumber converts numeric values and numeric strings to float64.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// Truthy mirrors the loose truthiness the editor's users expect.
func Truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != "" && value != "false"
	}

	if n, ok := ToNumber(v); ok {
		return n != 0
	}

	return true
}
