// Package logging wires up the process-wide slog.Logger, using tint for
// human-readable colorized output on a terminal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Options controls the logger construction.
type Options struct {
	Debug bool
	Out   io.Writer
}

// New builds the process-wide slog.Logger. In debug mode, source location
// is attached to every record.
func New(opts Options) *slog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  opts.Debug,
	})
	return slog.New(handler)
}

// NewDefault builds a logger at info level with no source attribution,
// suitable for tests and callers that haven't loaded configuration yet.
func NewDefault() *slog.Logger {
	return New(Options{})
}
