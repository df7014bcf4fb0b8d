// Package logx constructs the structured loggers supaq components log
// through. It is glue around log/slog: handler selection, level control and
// size-based file rotation. The core packages only ever see a *slog.Logger.
package logx

import (
	"io"
	"log/slog"
	"math"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a logger.
type Options struct {
	// Level is the minimum level to emit. Defaults to slog.LevelInfo.
	Level slog.Leveler
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// File, when set, routes output to a rotating log file instead of
	// stderr.
	File string
	// MaxSizeMB is the size threshold at which the file rotates.
	// Defaults to 100.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep. Defaults to 5.
	MaxBackups int
}

// New returns a logger built from opts.
func New(opts Options) *slog.Logger {
	var w io.Writer = os.Stderr
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 5
		}
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// Discard returns a logger that drops everything. Useful as a default for
// callers that did not configure logging.
func Discard() *slog.Logger {
	// slog.DiscardHandler requires Go 1.24; this is the pre-1.24 equivalent:
	// nothing is written and Enabled reports false for every level.
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(math.MaxInt),
	}))
}
