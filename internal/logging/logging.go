// Package logging defines the structured logger used across go-folio and a
// go-logger backed provider for it.
package logging

import "context"

// Logger is the structured logging contract. Args are alternating
// key/value pairs.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// Provider hands out named loggers.
type Provider interface {
	GetLogger(name string) Logger
}

// Logger names used by the application.
const (
	ContentLogger = "content"
	WatcherLogger = "watcher"
	ServerLogger  = "server"
	ContactLogger = "contact"
)

// NoOp returns a logger that drops every entry.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any)                 {}
func (noopLogger) Debug(string, ...any)                 {}
func (noopLogger) Info(string, ...any)                  {}
func (noopLogger) Warn(string, ...any)                  {}
func (noopLogger) Error(string, ...any)                 {}
func (n noopLogger) WithContext(context.Context) Logger { return n }

// OrNoOp returns l, or a no-op logger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOp()
	}
	return l
}

// Named returns the logger called name from p, or a no-op logger when p is
// nil.
func Named(p Provider, name string) Logger {
	if p == nil {
		return NoOp()
	}
	return OrNoOp(p.GetLogger(name))
}
