package hivestate

import (
	"encoding/json"
	"fmt"
	"math"
)

// Unmarshal decodes a hive_state document into the loosely-typed form that
// Normalize accepts. Numbers decode as float64.
func Unmarshal(data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse hive state JSON: %w", err)
	}
	return raw, nil
}

func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asNumber accepts finite numbers only, in any of the shapes a caller might
// hand over (plain JSON decode, UseNumber decode, or Go literals in tests).
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asArray(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

// lookup walks a dotted path through nested objects. Missing segments
// and non-object parents yield (nil, false).
func lookup(root any, path []string) (any, bool) {
	cur := root
	for _, seg := range path {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
