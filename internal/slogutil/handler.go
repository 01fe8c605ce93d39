package slogutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Options configures a CLIHandler.
type Options struct {
	Level slog.Leveler

	// Color paints the level label. Ignored when color.NoColor is set.
	Color bool

	// Timestamps prefixes each line with the record time in RFC 3339.
	Timestamps bool
}

// CLIHandler writes one line per record:
//
//	warn: Skipped file path=src/big.js reason="exceeds 1MB"
//
// Group names prefix attribute keys with dots.
type CLIHandler struct {
	w      io.Writer
	opts   Options
	labels map[slog.Level]string
	prefix string
	attrs  string
	mu     *sync.Mutex
}

// NewCLIHandler creates a handler writing to w. A nil Level means info.
func NewCLIHandler(w io.Writer, opts Options) *CLIHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &CLIHandler{
		w:      w,
		opts:   opts,
		labels: levelLabels(opts.Color),
		mu:     &sync.Mutex{},
	}
}

func levelLabels(colored bool) map[slog.Level]string {
	paint := map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.Faint),
		slog.LevelInfo:  color.New(color.FgCyan),
		slog.LevelWarn:  color.New(color.FgYellow),
		slog.LevelError: color.New(color.FgRed, color.Bold),
	}
	labels := make(map[slog.Level]string, len(paint))
	for level, c := range paint {
		if !colored {
			c.DisableColor()
		}
		labels[level] = c.Sprint(strings.ToLower(level.String()) + ":")
	}
	return labels
}

// Enabled reports whether the handler handles records at the given level.
func (h *CLIHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats and writes the record.
func (h *CLIHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if h.opts.Timestamps && !r.Time.IsZero() {
		b.WriteString(r.Time.UTC().Format(time.RFC3339))
		b.WriteByte(' ')
	}
	b.WriteString(h.label(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a handler that writes attrs on every line.
func (h *CLIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

// WithGroup returns a handler that prefixes later attribute keys with name.
func (h *CLIHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// label rounds custom levels down to the nearest standard one.
func (h *CLIHandler) label(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return h.labels[slog.LevelDebug]
	case level < slog.LevelWarn:
		return h.labels[slog.LevelInfo]
	case level < slog.LevelError:
		return h.labels[slog.LevelWarn]
	default:
		return h.labels[slog.LevelError]
	}
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, prefix, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().Round(time.Microsecond).String()
	case slog.KindString:
		s = v.String()
	default:
		s = fmt.Sprint(v.Any())
	}
	// Paths and error messages may hold spaces; keep key=value splittable.
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
