package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFile is the name of the build lock inside the output directory.
const LockFile = ".hive-build.lock"

// ErrLocked is returned when another build holds the output directory.
var ErrLocked = errors.New("another build holds the output directory lock")

// Locker guards the output directory against concurrent builds.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}

// FileLocker takes an exclusive flock on {dir}/.hive-build.lock, retrying
// until Timeout elapses.
type FileLocker struct {
	Dir     string
	Timeout time.Duration
	Retry   time.Duration
}

// NewFileLocker returns a locker for dir with the given acquisition timeout.
func NewFileLocker(dir string, timeout time.Duration) *FileLocker {
	return &FileLocker{Dir: dir, Timeout: timeout, Retry: 50 * time.Millisecond}
}

func (l *FileLocker) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	fl := flock.New(filepath.Join(l.Dir, LockFile))
	locked, err := fl.TryLockContext(ctx, l.Retry)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w (waited %s)", ErrLocked, l.Timeout)
		}
		return nil, fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return fl.Unlock, nil
}

// NoLock returns a locker that never blocks. Use it for in-memory filesystems.
func NoLock() Locker {
	return noLock{}
}

type noLock struct{}

func (noLock) Lock(context.Context) (func() error, error) {
	return func() error { return nil }, nil
}
