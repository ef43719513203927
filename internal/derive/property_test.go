package derive

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var stamps = []any{
	"2024-01-01T00:00:00Z", "2024-01-01T12:00:00Z", "2024-01-02T00:00:00Z",
	"2024-01-01 06:00Z", "2023-12-31", "", "garbage",
}

func generatedDoc(ids, whens []string) map[string]any {
	doc := baseDoc()
	roster := make([]any, 0, len(ids))
	msgs := make([]any, 0, len(ids))
	for i, id := range ids {
		roster = append(roster, map[string]any{"id": id})
		msgs = append(msgs, map[string]any{"sender_id": id, "timestamp": whens[i%len(whens)]})
	}
	posts := make([]any, 0, len(whens))
	for _, w := range whens {
		posts = append(posts, map[string]any{"when": w})
	}
	doc["minions"] = map[string]any{"roster": roster}
	doc["agora"] = map[string]any{"messages": msgs}
	doc["activities"] = map[string]any{"feed_posts": posts}
	return doc
}

// TestDeriveDeterminism verifies Derive(raw) == Derive(raw) for generated documents.
func TestDeriveDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("derive is deterministic in both feed orders", prop.ForAll(
		func(ids, whens []string) bool {
			doc := generatedDoc(ids, whens)
			for _, order := range []FeedOrder{FeedOrderLegacy, FeedOrderStrict} {
				opts := Options{FeedOrder: order, PreviewSize: DefaultPreviewSize}
				if !reflect.DeepEqual(Derive(doc, opts), Derive(doc, opts)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOfN(3, gen.OneConstOf(stamps...), reflect.TypeOf("")),
	))

	properties.TestingRun(t)
}

// TestLegacyFeedIsSortedDescending verifies the legacy feed is non-increasing by when.
func TestLegacyFeedIsSortedDescending(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("legacy feed is sorted by when, descending", prop.ForAll(
		func(ids, whens []string) bool {
			feed := Derive(generatedDoc(ids, whens), DefaultOptions()).FeedItems
			return slices.IsSortedFunc(feed, func(a, b FeedItem) int {
				return strings.Compare(b.When, a.When)
			})
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOfN(3, gen.OneConstOf(stamps...), reflect.TypeOf("")),
	))

	properties.TestingRun(t)
}
