package derive

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dyluth/hive/internal/timespec"
)

// FeedOrder selects how feed items are ordered by their when field.
type FeedOrder string

const (
	// FeedOrderLegacy sorts by descending byte-wise comparison of when.
	// It is only chronological when every source uses the same zero-padded
	// format, and it is what the published feed.json has always used.
	FeedOrderLegacy FeedOrder = "legacy"

	// FeedOrderStrict parses when into an instant and sorts newest first.
	// Unparseable values sort after every parseable one, in legacy order.
	FeedOrderStrict FeedOrder = "strict"
)

// Validate checks that o is a known order.
func (o FeedOrder) Validate() error {
	switch o {
	case FeedOrderLegacy, FeedOrderStrict:
		return nil
	default:
		return fmt.Errorf("unknown feed order: %q (must be 'legacy' or 'strict')", o)
	}
}

// sortFeed sorts items in place. Both orders are stable, so equal keys keep
// insertion order (agora, then ledger, then curated).
func sortFeed(items []FeedItem, order FeedOrder) {
	if order != FeedOrderStrict {
		slices.SortStableFunc(items, func(a, b FeedItem) int {
			return strings.Compare(b.When, a.When)
		})
		return
	}

	type keyed struct {
		item   FeedItem
		at     time.Time
		parsed bool
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		at, err := timespec.Parse(it.When)
		ks[i] = keyed{item: it, at: at, parsed: err == nil}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.parsed && b.parsed:
			return b.at.Compare(a.at)
		case a.parsed:
			return -1
		case b.parsed:
			return 1
		default:
			return strings.Compare(b.item.When, a.item.When)
		}
	})
	for i := range ks {
		items[i] = ks[i].item
	}
}
