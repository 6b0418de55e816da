// Package logging provides the structured logger used across scfetch.
//
// Components depend on the small Logger interface so callers can plug in
// their own implementation. The CLI uses the zerolog-backed logger returned
// by New; library callers that pass nothing get Nop.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Logger provides leveled logging with optional key-value pairs.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
}

// zeroLogger adapts a zerolog.Logger to the Logger interface.
type zeroLogger struct {
	zl zerolog.Logger
}

// ParseLevel parses a zerolog level name. Empty or unknown names give info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// New returns a Logger writing human-readable lines to w.
// Colors are enabled only when w is a terminal.
func New(w io.Writer, level string) Logger {
	lvl := ParseLevel(level)

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(w),
	}

	return &zeroLogger{
		zl: zerolog.New(console).Level(lvl).With().Timestamp().Logger(),
	}
}

// FromZerolog wraps an existing zerolog.Logger, e.g. one writing JSON.
func FromZerolog(zl zerolog.Logger) Logger {
	return &zeroLogger{zl: zl}
}

func (l *zeroLogger) Debug(msg string, keysAndValues ...any) {
	l.zl.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *zeroLogger) Info(msg string, keysAndValues ...any) {
	l.zl.Info().Fields(keysAndValues).Msg(msg)
}

func (l *zeroLogger) Warn(msg string, keysAndValues ...any) {
	l.zl.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *zeroLogger) Error(msg string, keysAndValues ...any) {
	l.zl.Error().Fields(keysAndValues).Msg(msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// nopLogger is a Logger implementation that does nothing.
type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...any) {}
func (nopLogger) Info(msg string, keysAndValues ...any)  {}
func (nopLogger) Warn(msg string, keysAndValues ...any)  {}
func (nopLogger) Error(msg string, keysAndValues ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

// fieldLogger prepends a fixed set of key-value pairs to every call.
type fieldLogger struct {
	next   Logger
	fields []any
}

// With returns a Logger that adds keysAndValues to every message logged
// through it.
func With(l Logger, keysAndValues ...any) Logger {
	if l == nil {
		l = Nop()
	}
	return &fieldLogger{next: l, fields: keysAndValues}
}

func (l *fieldLogger) merge(kv []any) []any {
	out := make([]any, 0, len(l.fields)+len(kv))
	out = append(out, l.fields...)
	return append(out, kv...)
}

func (l *fieldLogger) Debug(msg string, keysAndValues ...any) {
	l.next.Debug(msg, l.merge(keysAndValues)...)
}

func (l *fieldLogger) Info(msg string, keysAndValues ...any) {
	l.next.Info(msg, l.merge(keysAndValues)...)
}

func (l *fieldLogger) Warn(msg string, keysAndValues ...any) {
	l.next.Warn(msg, l.merge(keysAndValues)...)
}

func (l *fieldLogger) Error(msg string, keysAndValues ...any) {
	l.next.Error(msg, l.merge(keysAndValues)...)
}
