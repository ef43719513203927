// Package hivestate provides the typed HiveState record and the normalizer that
// turns a loosely-typed hive_state.json document into it.
//
// # Overview
//
// The hive state is the canonical persisted document describing the world, the
// minion roster, the ledger, the agora and the task board. Authors edit it by
// hand or through external tools, so any field may be missing or mistyped.
// Normalize is total: every input, including nil and non-objects, produces a
// fully-defaulted State plus two diagnostic lists.
//
// # Diagnostics
//
// Warnings describe recoverable defaulting or migration (for example a missing
// meta.schemaVersion). Errors describe structural invariant violations that must
// stop a build:
//
//   - meta.schema or meta.updatedAt missing or not a string
//   - world.max_minions not a number
//   - minions.roster not an array
//   - roster longer than world.max_minions
//   - duplicate minion ids (case-insensitive), one error per repeat
//   - absolute http(s) avatar URLs
//
// Type mismatches that do not break one of these rules silently fall back to
// the field default.
//
// # Schema tables
//
// Each record shape is described once as a Schema: an ordered list of Fields,
// each binding a JSON key to a struct slot together with its default. Structural
// rules on the raw document live in a separate Check table. Both are applied
// uniformly by Normalize.
//
// # Usage Example
//
//	raw, err := hivestate.Unmarshal(data)
//	if err != nil {
//		return err
//	}
//	res := hivestate.Normalize(raw)
//	for _, w := range res.Warnings {
//		log.Println("warning:", w)
//	}
//	if len(res.Errors) > 0 {
//		return fmt.Errorf("%d hard errors", len(res.Errors))
//	}
//	fmt.Println(res.Data.Meta.UpdatedAt, len(res.Data.Minions.Roster))
package hivestate
