package hivestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string
	Count float64
	On    bool
	Tags  []string
}

var sampleSchema = Schema[sample]{
	String("name", "anon", func(s *sample) *string { return &s.Name }),
	Number("count", 1, func(s *sample) *float64 { return &s.Count }),
	Bool("on", true, func(s *sample) *bool { return &s.On }),
	Strings("tags", []string{"t"}, "?", func(s *sample) *[]string { return &s.Tags }),
}

func TestSchema_Decode(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want sample
	}{
		{
			name: "non-object uses defaults",
			raw:  "nope",
			want: sample{Name: "anon", Count: 1, On: true, Tags: []string{"t"}},
		},
		{
			name: "typed values are kept",
			raw:  map[string]any{"name": "x", "count": 4.0, "on": false, "tags": []any{"a", true}},
			want: sample{Name: "x", Count: 4, On: false, Tags: []string{"a", "?"}},
		},
		{
			name: "mismatched values use defaults",
			raw:  map[string]any{"name": 1.0, "count": "4", "on": "false", "tags": "a"},
			want: sample{Name: "anon", Count: 1, On: true, Tags: []string{"t"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sampleSchema.Decode(tt.raw))
		})
	}
}

func TestSchema_DefaultSliceIsNotShared(t *testing.T) {
	a := sampleSchema.Decode(nil)
	a.Tags[0] = "mutated"

	b := sampleSchema.Decode(nil)
	assert.Equal(t, []string{"t"}, b.Tags)
}

func TestSchema_DecodeList(t *testing.T) {
	assert.Equal(t, []sample{}, sampleSchema.DecodeList(nil))
	assert.Len(t, sampleSchema.DecodeList([]any{nil, map[string]any{}}), 2)
}

func TestCheck_Violated(t *testing.T) {
	raw := map[string]any{"meta": map[string]any{"schema": "s", "n": 2.0}}

	assert.False(t, Check{Path: "meta.schema", Kind: KindString}.Violated(raw))
	assert.True(t, Check{Path: "meta.n", Kind: KindString}.Violated(raw))
	assert.False(t, Check{Path: "meta.n", Kind: KindNumber}.Violated(raw))
	assert.True(t, Check{Path: "meta.missing", Kind: KindNumber}.Violated(raw))
	assert.True(t, Check{Path: "meta.schema.deeper", Kind: KindString}.Violated(raw))
	assert.True(t, Check{Path: "list", Kind: KindArray}.Violated(nil))
}

func TestIsAbsoluteURL(t *testing.T) {
	assert.True(t, IsAbsoluteURL("http://x"))
	assert.True(t, IsAbsoluteURL("HTTPS://x"))
	assert.False(t, IsAbsoluteURL("./avatars/a.png"))
	assert.False(t, IsAbsoluteURL(""))
}
