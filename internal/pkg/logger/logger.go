package logger

import (
	"io"
	"log/slog"
	"os"
	"sort"
)

// StdLogger is a lightweight implementation backed by log/slog.
// Debug and Info are only emitted in verbose mode.
type StdLogger struct {
	inner *slog.Logger
}

// NewStd creates a StdLogger writing to stderr.
func NewStd(verbose bool) *StdLogger {
	return New(os.Stderr, verbose)
}

// New creates a StdLogger writing text records to w.
func New(w io.Writer, verbose bool) *StdLogger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &StdLogger{inner: slog.New(handler)}
}

// Discard returns a logger that drops everything.
func Discard() *StdLogger {
	return New(io.Discard, false)
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	l.inner.Debug(msg, attrs(fields)...)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	l.inner.Info(msg, attrs(fields)...)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	l.inner.Warn(msg, attrs(fields)...)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.inner.Error(msg, args...)
}

// attrs flattens the field map in key order so output is stable.
func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}
