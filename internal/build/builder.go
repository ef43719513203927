// Package build runs the hive build: validate the canonical state, derive the
// site view, write the artifacts, run the site generator and record build
// metadata. A build either completes every stage or stops at the first
// failure; validation errors stop it before anything is written.
package build

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/dyluth/hive/internal/artifact"
	"github.com/dyluth/hive/internal/derive"
	"github.com/dyluth/hive/internal/git"
	"github.com/dyluth/hive/internal/logging"
	"github.com/dyluth/hive/internal/timespec"
	"github.com/dyluth/hive/internal/validate"
)

// Options describe what to build.
type Options struct {
	StatePath   string
	OutputDir   string
	Derive      derive.Options
	Notes       string
	SiteCommand string
	LockTimeout time.Duration
}

// Result describes a finished or aborted build.
type Result struct {
	RunID       string
	Stages      []Stage
	Report      validate.Report
	State       derive.State
	Artifacts   []string
	SiteSkipped bool
	Meta        Meta
}

// Builder runs builds for one state document and output directory.
// Run calls are serialized.
type Builder struct {
	opts     Options
	siteArgv []string

	fs       afero.Fs
	revision func(ctx context.Context) string
	site     SiteRunner
	now      func() time.Time
	logger   logging.Logger
	locker   Locker

	mu sync.Mutex
}

// Option customizes a Builder.
type Option func(*Builder)

// WithFs sets the filesystem used for reading state and writing artifacts.
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) { b.fs = fs }
}

// WithRevision sets the VCS revision lookup. It must not fail; return
// git.UnknownRevision instead.
func WithRevision(fn func(ctx context.Context) string) Option {
	return func(b *Builder) { b.revision = fn }
}

// WithSiteRunner replaces the process runner for the site generator.
func WithSiteRunner(r SiteRunner) Option {
	return func(b *Builder) { b.site = r }
}

// WithClock sets the clock used for builtAt.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithLogger sets the stage logger.
func WithLogger(l logging.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithLocker replaces the output directory lock.
func WithLocker(l Locker) Option {
	return func(b *Builder) { b.locker = l }
}

// New validates opts and returns a builder. Unset collaborators default to
// the OS filesystem, git in the working directory, a child-process site
// runner and a flock on the output directory.
func New(opts Options, options ...Option) (*Builder, error) {
	if opts.StatePath == "" {
		return nil, fmt.Errorf("state path is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := opts.Derive.Validate(); err != nil {
		return nil, fmt.Errorf("invalid derive options: %w", err)
	}
	argv, err := ParseCommand(opts.SiteCommand)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		opts:     opts,
		siteArgv: argv,
		fs:       afero.NewOsFs(),
		revision: git.NewChecker("").Revision,
		site:     NewExecRunner(""),
		now:      timespec.Now,
		logger:   logging.Discard(),
	}
	for _, o := range options {
		o(b)
	}
	if b.locker == nil {
		b.locker = NewFileLocker(opts.OutputDir, opts.LockTimeout)
	}
	return b, nil
}

// Run executes one build. It returns an *AbortError when validation finds
// hard errors and a *StageError for any I/O failure; the Result is non-nil in
// both cases and records the stages reached.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := &Result{RunID: uuid.NewString()}
	log := b.logger.With("build", res.RunID)

	unlock, err := b.locker.Lock(ctx)
	if err != nil {
		log.Error("lock failed", "output", b.opts.OutputDir, "error", err)
		return res, err
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("unlock failed", "error", err)
		}
	}()

	writer := artifact.NewWriter(b.fs, b.opts.OutputDir)
	for stage := StageStart; ; stage = next(stage) {
		res.Stages = append(res.Stages, stage)
		log.Debug("stage", "stage", stage)

		if err := ctx.Err(); err != nil && stage != StageDone {
			return res, &StageError{Stage: stage, Err: err}
		}

		switch stage {
		case StageStart:
		case StageValidate:
			raw, err := validate.Load(b.fs, b.opts.StatePath)
			if err != nil {
				return res, &StageError{Stage: stage, Err: err}
			}
			res.Report = validate.Check(raw)
			validate.Print(res.Report)
			if !res.Report.OK() {
				res.Stages = append(res.Stages, StageAbort)
				log.Warn("aborted", "errors", len(res.Report.Errors))
				return res, &AbortError{Errors: res.Report.Errors}
			}
		case StageDerive:
			res.State = derive.FromResult(res.Report.Result, b.opts.Derive)
			log.Debug("derived", "feed", len(res.State.FeedItems), "roster", len(res.State.RosterFull))
		case StageWriteArtifacts:
			paths, err := writer.WriteAll(res.State)
			res.Artifacts = paths
			if err != nil {
				return res, &StageError{Stage: stage, Err: err}
			}
		case StageGenerateSite:
			if len(b.siteArgv) == 0 {
				res.SiteSkipped = true
				log.Debug("site generation skipped")
				continue
			}
			if err := b.site.Run(ctx, b.siteArgv); err != nil {
				return res, &StageError{Stage: stage, Err: err}
			}
		case StageWriteBuildMeta:
			res.Meta = newMeta(b.now(), b.revisionOrUnknown(ctx), b.opts.Notes)
			path, err := writer.WriteJSON(artifact.BuildFile, res.Meta)
			if err != nil {
				return res, &StageError{Stage: stage, Err: err}
			}
			res.Artifacts = append(res.Artifacts, path)
		case StageDone:
			log.Info("build complete", "artifacts", len(res.Artifacts), "gitSha", res.Meta.GitSha)
			return res, nil
		}
	}
}

// revisionOrUnknown never fails the build.
func (b *Builder) revisionOrUnknown(ctx context.Context) (rev string) {
	defer func() {
		if recover() != nil || rev == "" {
			rev = git.UnknownRevision
		}
	}()
	return b.revision(ctx)
}

// IsAbort reports whether err stopped a build at validation.
func IsAbort(err error) bool {
	var abort *AbortError
	return errors.As(err, &abort)
}
