package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// NormalizeValue maps json.Number values onto int64 (when integral) or
// float64, recursing into nested objects and arrays. Snapshot loads decode
// with UseNumber and run every row value through this so that a
// save/load cycle reproduces the in-memory structure exactly.
func NormalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]interface{}:
		for k, nested := range val {
			val[k] = NormalizeValue(nested)
		}
		return val
	case []interface{}:
		for i, nested := range val {
			val[i] = NormalizeValue(nested)
		}
		return val
	default:
		return v
	}
}

// NumericValue coerces ints, floats and json.Number to float64.
func NumericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ValuesEqual is the WHERE-filter equality: numerics compare by value
// regardless of concrete type, everything else by deep equality.
func ValuesEqual(a, b interface{}) bool {
	if an, ok := NumericValue(a); ok {
		if bn, ok := NumericValue(b); ok {
			return an == bn
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// CompareValues orders two dynamic values: nil sorts first, then numerics,
// booleans (false before true) and strings by their native ordering. Values
// of incomparable types fall back to their string forms.
func CompareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if an, ok := NumericValue(a); ok {
		if bn, ok := NumericValue(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}

	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}
