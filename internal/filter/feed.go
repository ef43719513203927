package filter

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dyluth/hive/internal/derive"
	"github.com/dyluth/hive/internal/timespec"
)

// Criteria defines filtering criteria for feed items.
// All filters are ANDed together - an item must match ALL criteria to pass.
type Criteria struct {
	Since     time.Time // Zero = no filter
	Until     time.Time // Zero = no filter
	TopicGlob string    // Glob pattern for topic, empty = no filter
	Who       string    // Case-insensitive match on who, empty = no filter
}

// Matches returns true if the item matches all filter criteria.
// Items whose when cannot be parsed never match a time bound.
func (c *Criteria) Matches(item derive.FeedItem) bool {
	if !c.Since.IsZero() || !c.Until.IsZero() {
		when, err := timespec.Parse(item.When)
		if err != nil {
			return false
		}
		if !c.Since.IsZero() && when.Before(c.Since) {
			return false
		}
		if !c.Until.IsZero() && when.After(c.Until) {
			return false
		}
	}

	if c.TopicGlob != "" {
		matched, err := filepath.Match(c.TopicGlob, item.Topic)
		if err != nil || !matched {
			return false
		}
	}

	if c.Who != "" && !strings.EqualFold(item.Who, c.Who) {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return !c.Since.IsZero() ||
		!c.Until.IsZero() ||
		c.TopicGlob != "" ||
		c.Who != ""
}

// Apply returns the matching items in their original order. The result is
// never nil.
func (c *Criteria) Apply(items []derive.FeedItem) []derive.FeedItem {
	out := make([]derive.FeedItem, 0, len(items))
	for _, item := range items {
		if c.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}
