// Package validate is the fail-fast gate in front of derivation. It reads the
// canonical hive state, normalizes it, reports warnings and refuses to
// continue when any structural error is present.
package validate

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/dyluth/hive/internal/printer"
	"github.com/dyluth/hive/pkg/hivestate"
)

// ErrInvalidState marks a hive state with at least one hard error.
var ErrInvalidState = errors.New("hive state has validation errors")

// Report summarizes one validation pass
type Report struct {
	UpdatedAt  string
	RosterSize int
	Warnings   []string
	Errors     []string

	// Result is the normalized document the report was computed from
	Result hivestate.Result
}

// OK reports whether the state is free of hard errors
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a valid report and an error wrapping ErrInvalidState otherwise
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d error(s), first: %s", ErrInvalidState, len(r.Errors), r.Errors[0])
}

// Load reads and parses the hive state document at path
func Load(fsys afero.Fs, path string) (any, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hive state: %w", err)
	}
	return hivestate.Unmarshal(data)
}

// Check normalizes raw and summarizes the outcome. It never fails.
func Check(raw any) Report {
	res := hivestate.Normalize(raw)
	return Report{
		UpdatedAt:  res.Data.Meta.UpdatedAt,
		RosterSize: len(res.Data.Minions.Roster),
		Warnings:   res.Warnings,
		Errors:     res.Errors,
		Result:     res,
	}
}

// Print writes warnings and errors to the diagnostic stream and, when the
// report is clean, the success summary to stdout
func Print(r Report) {
	for _, w := range r.Warnings {
		printer.Warning("%s\n", w)
	}
	for _, e := range r.Errors {
		printer.Failure("hive_state validation failed: %s\n", e)
	}
	if r.OK() {
		printer.Success("validate_hive ok %s roster=%d\n", r.UpdatedAt, r.RosterSize)
	}
}

// Run loads path, checks it, prints the diagnostics and returns the report.
// The error wraps ErrInvalidState when the document has hard errors.
func Run(fsys afero.Fs, path string) (Report, error) {
	raw, err := Load(fsys, path)
	if err != nil {
		return Report{}, err
	}
	report := Check(raw)
	Print(report)
	return report, report.Err()
}
