// Package logging builds the application's slog logger: a compact console
// handler for interactive runs (colorized when stderr is a terminal) and a
// JSON handler for machine consumption.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console, json
	// Path appends output to a log file in addition to stderr.
	Path string
	// NoColor disables ANSI colors even on a terminal.
	NoColor bool
}

// New constructs a slog logger from options.
func New(opts Options) (*slog.Logger, error) {
	writer, color, err := openWriter(opts)
	if err != nil {
		return nil, err
	}

	level := parseLevel(opts.Level)

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	switch format {
	case "console":
		return slog.New(newConsoleHandler(writer, level, color)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// WithComponent returns a child logger tagged with a component name. The
// console handler renders the tag as a message prefix.
func WithComponent(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openWriter(opts Options) (io.Writer, bool, error) {
	color := !opts.NoColor && isatty.IsTerminal(os.Stderr.Fd())

	if opts.Path == "" {
		return os.Stderr, color, nil
	}

	if dir := filepath.Dir(opts.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open log file %s: %w", opts.Path, err)
	}
	// Color codes would pollute the file copy.
	return io.MultiWriter(os.Stderr, file), false, nil
}
