package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// UnknownRevision is reported when the revision cannot be determined.
const UnknownRevision = "unknown"

// ErrGitNotFound is returned when the git binary is not on PATH.
var ErrGitNotFound = errors.New("git not found in PATH")

// Checker answers questions about the Git repository rooted at (or above) Dir
type Checker struct {
	Dir string // Working directory for git commands; empty means the process cwd
}

// NewChecker creates a new Git checker for dir
func NewChecker(dir string) *Checker {
	return &Checker{Dir: dir}
}

func (c *Checker) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.Dir
	out, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", ErrGitNotFound
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsGitRepository checks if Dir is within a Git repository
func (c *Checker) IsGitRepository(ctx context.Context) (bool, error) {
	_, err := c.output(ctx, "rev-parse", "--git-dir")
	if err != nil {
		if errors.Is(err, ErrGitNotFound) {
			return false, err
		}
		// Not in a Git repository
		return false, nil
	}
	return true, nil
}

// ShortRevision returns the abbreviated commit hash of HEAD
func (c *Checker) ShortRevision(ctx context.Context) (string, error) {
	rev, err := c.output(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	if rev == "" {
		return "", fmt.Errorf("git rev-parse returned an empty revision")
	}
	return rev, nil
}

// Revision returns the abbreviated HEAD commit, or UnknownRevision on any failure.
// It never fails.
func (c *Checker) Revision(ctx context.Context) string {
	rev, err := c.ShortRevision(ctx)
	if err != nil {
		return UnknownRevision
	}
	return rev
}
