package uthreads

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// LogifaceAdapter adapts a typed logiface.Logger to the scheduler's Logger
// interface, so callers already standardized on logiface (with a zerolog,
// logrus, slog, or stumpy backend) can plug it straight into [WithLogger]
// instead of the built-in [DefaultLogger].
type LogifaceAdapter[E logiface.Event] struct {
	L *logiface.Logger[E]
}

// NewLogifaceAdapter wraps l as a Logger.
func NewLogifaceAdapter[E logiface.Event](l *logiface.Logger[E]) *LogifaceAdapter[E] {
	return &LogifaceAdapter[E]{L: l}
}

func toLogifaceLevel(level LogLevel) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

// IsEnabled implements Logger.
func (a *LogifaceAdapter[E]) IsEnabled(level LogLevel) bool {
	if a == nil || a.L == nil {
		return false
	}
	return a.L.Level() >= toLogifaceLevel(level)
}

// Log implements Logger, translating a LogEntry into a logiface builder
// chain.
func (a *LogifaceAdapter[E]) Log(entry LogEntry) {
	if a == nil || a.L == nil {
		return
	}
	b := a.L.Build(toLogifaceLevel(entry.Level))
	if b == nil || !b.Enabled() {
		return
	}
	if entry.Category != "" {
		b = b.Str("category", entry.Category)
	}
	if entry.ThreadID >= 0 {
		b = b.Int("tid", int(entry.ThreadID))
	}
	if entry.Quantum != 0 {
		b = b.Int("quantum", int(entry.Quantum))
	}
	for k, v := range entry.Fields {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(fmt.Sprint(entry.Message))
}
