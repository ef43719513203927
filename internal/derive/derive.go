// Package derive computes the read-only view of a hive state that the static
// site consumes: sorted roster, merged activity feed, sorted task board and a
// health-meter snapshot. Derivation is pure and never aborts; normalization
// diagnostics are carried in the result for the caller to act on.
package derive

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dyluth/hive/pkg/hivestate"
)

// DefaultPreviewSize is the number of minions in the roster preview.
const DefaultPreviewSize = 12

// Options tune derivation. The zero value is not valid; use DefaultOptions.
type Options struct {
	FeedOrder   FeedOrder
	PreviewSize int
}

// DefaultOptions returns the legacy-compatible settings.
func DefaultOptions() Options {
	return Options{FeedOrder: FeedOrderLegacy, PreviewSize: DefaultPreviewSize}
}

// Validate checks the option values.
func (o Options) Validate() error {
	if err := o.FeedOrder.Validate(); err != nil {
		return err
	}
	if o.PreviewSize < 0 {
		return fmt.Errorf("preview size must be >= 0, got %d", o.PreviewSize)
	}
	return nil
}

// Meters is the health-meter snapshot.
type Meters struct {
	VirtualVoltage float64 `json:"virtual_voltage"`
	Entropy        float64 `json:"entropy"`
	LoopRisk       float64 `json:"loop_risk"`
}

// Status is the status-page projection.
type Status struct {
	UpdatedAt    string                `json:"updatedAt"`
	CI           string                `json:"ci"`
	Overall      float64               `json:"overall"`
	OverallLabel string                `json:"overallLabel"`
	Milestones   []hivestate.Milestone `json:"milestones"`
}

// State is the derived view. It is recomputed on every build and never
// persisted as a source of truth.
type State struct {
	SchemaVersion float64               `json:"schemaVersion"`
	Warnings      []string              `json:"warnings"`
	Errors        []string              `json:"errors"`
	LastUpdated   string                `json:"lastUpdated"`
	HealthStatus  hivestate.Health      `json:"healthStatus"`
	Meters        Meters                `json:"meters"`
	Status        Status                `json:"status"`
	FeedItems     []FeedItem            `json:"feedItems"`
	Tasks         []hivestate.Task      `json:"tasks"`
	RosterPreview []hivestate.Minion    `json:"rosterPreview"`
	RosterFull    []hivestate.Minion    `json:"rosterFull"`
	Agora         hivestate.Agora       `json:"agora"`
	Ledger        hivestate.Ledger      `json:"ledger"`
	Covenant      hivestate.Covenant    `json:"covenant"`
	OntologyLab   hivestate.OntologyLab `json:"ontology_lab"`
	Mechanics     hivestate.Mechanics   `json:"mechanics"`
	CodeCanon     hivestate.CodeCanon   `json:"code_canon"`
}

// Derive normalizes raw and derives the view from it.
func Derive(raw any, opts Options) State {
	return FromResult(hivestate.Normalize(raw), opts)
}

// FromResult derives the view from an already-normalized document.
func FromResult(res hivestate.Result, opts Options) State {
	hive := res.Data

	roster := sortRoster(hive.Minions.Roster)
	preview := roster
	if opts.PreviewSize >= 0 && opts.PreviewSize < len(roster) {
		preview = roster[:opts.PreviewSize]
	}

	return State{
		SchemaVersion: hive.Meta.SchemaVersion,
		Warnings:      res.Warnings,
		Errors:        res.Errors,
		LastUpdated:   hive.Meta.UpdatedAt,
		HealthStatus:  hive.World.Health,
		Meters: Meters{
			VirtualVoltage: hive.World.Health.VirtualVoltage,
			Entropy:        hive.World.Health.Entropy,
			LoopRisk:       hive.World.Health.LoopRisk,
		},
		Status: Status{
			UpdatedAt:    hive.Meta.UpdatedAt,
			CI:           hive.Activities.Status.CI,
			Overall:      hive.Activities.Status.Overall,
			OverallLabel: hive.Activities.Status.OverallLabel,
			Milestones:   hive.Activities.Status.Milestones,
		},
		FeedItems:     buildFeed(hive, opts.FeedOrder),
		Tasks:         sortTasks(hive.Tasks.Board),
		RosterPreview: slices.Clone(preview),
		RosterFull:    roster,
		Agora:         hive.Agora,
		Ledger:        hive.Ledger,
		Covenant:      hive.Covenant,
		OntologyLab:   hive.OntologyLab,
		Mechanics:     hive.Mechanics,
		CodeCanon:     hive.CodeCanon,
	}
}

// sortRoster orders minions by id, ascending and case-sensitive. The sort is
// stable so malformed rosters with repeated ids keep their input order.
func sortRoster(roster []hivestate.Minion) []hivestate.Minion {
	out := slices.Clone(roster)
	slices.SortStableFunc(out, func(a, b hivestate.Minion) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// sortTasks orders tasks by id, or by title when id is empty.
func sortTasks(board []hivestate.Task) []hivestate.Task {
	out := slices.Clone(board)
	key := func(t hivestate.Task) string {
		if t.ID != "" {
			return t.ID
		}
		return t.Title
	}
	slices.SortStableFunc(out, func(a, b hivestate.Task) int {
		return strings.Compare(key(a), key(b))
	})
	return out
}
