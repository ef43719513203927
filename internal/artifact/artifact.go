// Package artifact projects a derived hive view into the JSON files the
// static site reads, and writes them as whole-file atomic replacements.
package artifact

import (
	"github.com/dyluth/hive/internal/derive"
	"github.com/dyluth/hive/pkg/hivestate"
)

// Output file names, relative to the output directory.
const (
	StatusFile  = "status.json"
	FeedFile    = "feed.json"
	MinionsFile = "minions.json"
	AgoraFile   = "agora.json"
	BuildFile   = "build.json"
)

// Feed is the feed.json document.
type Feed struct {
	UpdatedAt string            `json:"updatedAt"`
	Posts     []derive.FeedItem `json:"posts"`
}

// Minions is the minions.json document.
type Minions struct {
	UpdatedAt string             `json:"updatedAt"`
	Minions   []hivestate.Minion `json:"minions"`
}

// Agora is the agora.json document.
type Agora struct {
	UpdatedAt string              `json:"updatedAt"`
	Mode      string              `json:"mode"`
	Notes     string              `json:"notes"`
	Messages  []hivestate.Message `json:"messages"`
}

// Artifact is one named output document.
type Artifact struct {
	Name  string
	Value any
}

// Project returns the four site artifacts for d, in write order.
func Project(d derive.State) []Artifact {
	return []Artifact{
		{Name: StatusFile, Value: d.Status},
		{Name: FeedFile, Value: Feed{UpdatedAt: d.LastUpdated, Posts: nonNil(d.FeedItems)}},
		{Name: MinionsFile, Value: Minions{UpdatedAt: d.LastUpdated, Minions: nonNil(d.RosterFull)}},
		{Name: AgoraFile, Value: Agora{
			UpdatedAt: d.LastUpdated,
			Mode:      d.Agora.Mode,
			Notes:     d.Agora.Notes,
			Messages:  nonNil(d.Agora.Messages),
		}},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
