package build

import (
	"time"

	"github.com/dyluth/hive/internal/timespec"
)

// DefaultNotes is the notes text written to build.json when none is configured.
const DefaultNotes = "Generated artifacts are committed for GitHub Pages. Source of truth: docs/hive_state.json."

// Meta is the build.json document.
type Meta struct {
	BuiltAt string `json:"builtAt"`
	GitSha  string `json:"gitSha"`
	Notes   string `json:"notes"`
}

func newMeta(now time.Time, revision, notes string) Meta {
	if notes == "" {
		notes = DefaultNotes
	}
	return Meta{
		BuiltAt: timespec.Format(now),
		GitSha:  revision,
		Notes:   notes,
	}
}
