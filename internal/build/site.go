package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// SiteRunner runs the external site generator.
type SiteRunner interface {
	Run(ctx context.Context, argv []string) error
}

// ParseCommand splits a configured site command into argv using shell
// quoting rules. An empty or blank command yields nil, which skips the stage.
func ParseCommand(command string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, nil
	}
	if strings.ContainsAny(command, "\r\n") {
		return nil, fmt.Errorf("site command must be a single line")
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid site command %q: %w", command, err)
	}
	return argv, nil
}

// ExecRunner runs the site generator as a child process.
type ExecRunner struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner that inherits the process's stdout and stderr.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("site command %s: %w", argv[0], err)
	}
	return nil
}
