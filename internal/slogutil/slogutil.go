// Package slogutil builds the loggers deptrim writes its diagnostics to.
//
// Reports go to stdout; everything logged here goes to stderr or to the
// --log-file, so piping a JSON report never mixes in log lines.
package slogutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log line encoding.
type Format string

const (
	// FormatHuman writes "level: message key=value" lines
	FormatHuman Format = "human"
	// FormatJSON writes one JSON object per line
	FormatJSON Format = "json"
)

// LevelSilent sits above every standard level; -q uses it.
const LevelSilent = slog.Level(100)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
	"silent":  LevelSilent,
}

// NewHandler returns a stderr handler. Human output is colored unless
// color is globally disabled.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return NewCLIHandler(w, Options{Level: level, Color: true})
}

// OpenLogFile opens path for appending and returns a timestamped,
// uncolored handler writing to it. The caller closes the file.
func OpenLogFile(path string, level slog.Level) (slog.Handler, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return NewCLIHandler(f, Options{Level: level, Timestamps: true}), f, nil
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseFormat converts a config string to a Format (case-insensitive).
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatHuman
}

// ParseLevel converts a config level name (case-insensitive). ok is false
// for unknown names, in which case warn is returned.
func ParseLevel(s string) (slog.Level, bool) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return slog.LevelWarn, false
	}
	return level, true
}

// LevelFromVerbosity maps -q and the -v count to a level: warn by default,
// info for -v, debug for -vv and above.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	switch {
	case quiet:
		return LevelSilent
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Tee returns a handler that forwards each record to every handler
// enabled for its level. The first error wins.
func Tee(handlers ...slog.Handler) slog.Handler {
	return tee(handlers)
}

type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t tee) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t tee) each(fn func(slog.Handler) slog.Handler) tee {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}
