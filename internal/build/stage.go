package build

import (
	"fmt"
	"strings"

	"github.com/dyluth/hive/internal/validate"
)

// Stage is one step of the build state machine. A build visits the stages in
// declaration order and may leave early only through StageAbort.
type Stage string

const (
	StageStart          Stage = "start"
	StageValidate       Stage = "validate"
	StageAbort          Stage = "abort"
	StageDerive         Stage = "derive"
	StageWriteArtifacts Stage = "write"
	StageGenerateSite   Stage = "site"
	StageWriteBuildMeta Stage = "meta"
	StageDone           Stage = "done"
)

// next returns the stage following s on the success path.
func next(s Stage) Stage {
	switch s {
	case StageStart:
		return StageValidate
	case StageValidate:
		return StageDerive
	case StageDerive:
		return StageWriteArtifacts
	case StageWriteArtifacts:
		return StageGenerateSite
	case StageGenerateSite:
		return StageWriteBuildMeta
	case StageWriteBuildMeta:
		return StageDone
	default:
		return StageDone
	}
}

// AbortError is returned when validation finds hard errors. Nothing has been
// written when it is returned.
type AbortError struct {
	Errors []string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("build aborted: %d validation error(s): %s", len(e.Errors), strings.Join(e.Errors, "; "))
}

// Unwrap lets errors.Is match validate.ErrInvalidState.
func (e *AbortError) Unwrap() error {
	return validate.ErrInvalidState
}

// StageError wraps an I/O failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
