package hivestate

import (
	"strings"

	"github.com/mohae/deepcopy"
)

// Field binds one key of a raw JSON object to a slot of record R.
// Every field carries its own default; a missing or mistyped value yields the
// default and never an error.
type Field[R any] struct {
	Key   string
	apply func(rec *R, obj map[string]any)
}

// Schema describes one record shape as an ordered list of fields.
type Schema[R any] []Field[R]

// Decode builds a record from raw. Non-object input decodes as if it were an
// empty object, so the result is always fully defaulted.
func (s Schema[R]) Decode(raw any) R {
	obj, _ := asObject(raw)
	var rec R
	for _, f := range s {
		f.apply(&rec, obj)
	}
	return rec
}

// DecodeList decodes every element of raw with s. A non-array yields an
// empty, non-nil slice.
func (s Schema[R]) DecodeList(raw any) []R {
	arr, _ := asArray(raw)
	out := make([]R, 0, len(arr))
	for _, item := range arr {
		out = append(out, s.Decode(item))
	}
	return out
}

// String binds a string field.
func String[R any](key, def string, slot func(*R) *string) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		*slot(rec) = stringOr(obj[key], def)
	}}
}

// FirstString binds a string slot to the first key holding a non-empty
// string, falling back to def.
func FirstString[R any](keys []string, def string, slot func(*R) *string) Field[R] {
	return Field[R]{Key: strings.Join(keys, "|"), apply: func(rec *R, obj map[string]any) {
		*slot(rec) = def
		for _, k := range keys {
			if s, ok := asString(obj[k]); ok && s != "" {
				*slot(rec) = s
				return
			}
		}
	}}
}

// Number binds a finite numeric field.
func Number[R any](key string, def float64, slot func(*R) *float64) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		*slot(rec) = numberOr(obj[key], def)
	}}
}

// Bool binds a boolean field.
func Bool[R any](key string, def bool, slot func(*R) *bool) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		b, ok := asBool(obj[key])
		if !ok {
			b = def
		}
		*slot(rec) = b
	}}
}

// Strings binds an array of strings. A non-array yields a copy of def;
// non-string elements become elemDef.
func Strings[R any](key string, def []string, elemDef string, slot func(*R) *[]string) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		*slot(rec) = stringList(obj[key], def, elemDef)
	}}
}

// Nested binds a child record.
func Nested[R, C any](key string, child Schema[C], slot func(*R) *C) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		*slot(rec) = child.Decode(obj[key])
	}}
}

// List binds an array of child records.
func List[R, E any](key string, elem Schema[E], slot func(*R) *[]E) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		*slot(rec) = elem.DecodeList(obj[key])
	}}
}

// Opaque binds an arbitrary JSON value, detached from the caller's input so
// later mutation of the raw document cannot leak into the record.
func Opaque[R any](key string, slot func(*R) *any) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		*slot(rec) = deepcopy.Copy(obj[key])
	}}
}

// StringListMap binds an object whose values are string arrays.
func StringListMap[R any](key string, slot func(*R) *map[string][]string) Field[R] {
	return Field[R]{Key: key, apply: func(rec *R, obj map[string]any) {
		src, _ := asObject(obj[key])
		out := make(map[string][]string, len(src))
		for k, v := range src {
			out[k] = stringList(v, nil, "")
		}
		*slot(rec) = out
	}}
}

func stringOr(v any, def string) string {
	if s, ok := asString(v); ok {
		return s
	}
	return def
}

func numberOr(v any, def float64) float64 {
	if f, ok := asNumber(v); ok {
		return f
	}
	return def
}

func stringList(v any, def []string, elemDef string) []string {
	arr, ok := asArray(v)
	if !ok {
		return append([]string{}, def...)
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, stringOr(item, elemDef))
	}
	return out
}

// Kind is the JSON type a Check requires.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindArray
)

func (k Kind) matches(v any) bool {
	switch k {
	case KindString:
		_, ok := asString(v)
		return ok
	case KindNumber:
		_, ok := asNumber(v)
		return ok
	case KindArray:
		_, ok := asArray(v)
		return ok
	}
	return false
}

// Check is a structural rule on the raw document: the value at Path must be
// present with the given Kind, otherwise Message becomes a hard error.
type Check struct {
	Path    string
	Kind    Kind
	Message string
}

// Violated reports whether raw breaks the rule.
func (c Check) Violated(raw any) bool {
	v, ok := lookup(raw, strings.Split(c.Path, "."))
	return !ok || !c.Kind.matches(v)
}
