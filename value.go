package forman

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Helpers for reading scalars out of decoded JSON/YAML values. Decoders
// run with UseNumber, so numerics arrive as json.Number as well as the
// native Go kinds YAML produces.

func anyString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func anyBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func anyFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func anyInt(v any) (int, bool) {
	f, ok := anyFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// valueEqual compares two decoded JSON scalars, treating numerics
// numerically so json.Number(1) equals float64(1) and int(1).
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := anyFloat(a); ok {
		fb, ok2 := anyFloat(b)
		return ok2 && fa == fb
	}
	if sa, ok := a.(string); ok {
		sb, ok2 := b.(string)
		return ok2 && sa == sb
	}
	if ba, ok := a.(bool); ok {
		bb, ok2 := b.(bool)
		return ok2 && ba == bb
	}
	return false
}

// valueString renders a scalar for inclusion in a message.
func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// isEmptyValue reports whether v counts as "no value supplied": nil or the
// empty string. Empty arrays and objects are values in their own right.
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
