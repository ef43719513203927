package timespec

import (
	"fmt"
	"strings"
	"time"
)

// DisplayLayout is the compact minute-resolution form used on feed items,
// e.g. "2024-01-01 12:30Z".
const DisplayLayout = "2006-01-02 15:04Z"

// layouts are tried in order by Parse.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DisplayLayout,
	"2006-01-02 15:04:05Z",
	"2006-01-02T15:04Z",
	"2006-01-02",
}

// Parse parses a timestamp-like string. Supported formats:
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z", with or without fractional seconds
//   - Display stamps: "2025-10-29 13:00Z"
//   - Space-separated seconds: "2025-10-29 13:00:00Z"
//   - Dates: "2025-10-29" (midnight UTC)
//
// Returns the instant in UTC.
func Parse(spec string) (time.Time, error) {
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, spec); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use RFC3339 like '2025-10-29T13:00:00Z' or '2025-10-29 13:00Z')", spec)
}

// Display converts an ISO-8601 timestamp into the compact display stamp by
// textual rewriting: the first "T" becomes a space and the result is cut to
// minute resolution. Values without a "T" are returned unchanged.
//
// The rewrite is purely textual so that already-odd inputs stay stable
// across builds; it never consults the clock or a timezone database.
func Display(iso string) string {
	if iso == "" || !strings.Contains(iso, "T") {
		return iso
	}
	s := strings.Replace(iso, "T", " ", 1)
	s = strings.Replace(s, ".000Z", "Z", 1)
	if len(s) > 16 {
		s = s[:16]
	}
	return s + "Z"
}

// Now returns the current UTC time truncated to whole seconds.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Format renders t as an RFC3339 timestamp at whole-second resolution.
func Format(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// ParseBound parses a filter bound: either a timestamp accepted by Parse or a
// Go duration ("90m", "2h") meaning that long before now.
func ParseBound(spec string, now time.Time) (time.Time, error) {
	if t, err := Parse(spec); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(spec); err == nil {
		return now.Add(-d).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time specification: %s (use duration like '1h30m' or a timestamp like '2025-10-29T13:00:00Z')", spec)
}

// ParseRange parses --since and --until. A zero time means no bound on that
// end. Since must be before until when both are given.
func ParseRange(since, until string, now time.Time) (time.Time, time.Time, error) {
	var sinceT, untilT time.Time
	var err error

	if since != "" {
		sinceT, err = ParseBound(since, now)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		untilT, err = ParseBound(until, now)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if !sinceT.IsZero() && !untilT.IsZero() && !sinceT.Before(untilT) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}

	return sinceT, untilT, nil
}
