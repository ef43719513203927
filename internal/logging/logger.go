// Package logging provides structured stage logging for hive builds.
// User-facing diagnostics go through the printer package instead.
package logging

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Level names accepted by New.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (l Level) charm() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case InfoLevel:
		return charmlog.InfoLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.WarnLevel
	}
}

// Logger is the key/value logging surface used by the pipeline.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

type charmLogger struct {
	l *charmlog.Logger
}

// New returns a text logger writing to w. A nil w writes to stderr.
func New(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level.charm(),
		Prefix:          "hive",
	})
	return &charmLogger{l: l}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return New(io.Discard, ErrorLevel)
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}
