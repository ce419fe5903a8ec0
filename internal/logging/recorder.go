package logging

import (
	"context"
	"sync"
)

// Entry is one recorded log call.
type Entry struct {
	Level string
	Msg   string
	Args  []any
}

// Recorder is an in-memory Logger for tests and the check command.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Logger = (*Recorder)(nil)

func (r *Recorder) record(level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Args: append([]any(nil), args...)})
}

func (r *Recorder) Trace(msg string, args ...any) { r.record("trace", msg, args) }
func (r *Recorder) Debug(msg string, args ...any) { r.record("debug", msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.record("info", msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.record("warn", msg, args) }
func (r *Recorder) Error(msg string, args ...any) { r.record("error", msg, args) }

// WithContext returns r; context values are not recorded.
func (r *Recorder) WithContext(context.Context) Logger { return r }

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many entries have the given level and message.
func (r *Recorder) Count(level, msg string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && e.Msg == msg {
			n++
		}
	}
	return n
}

// Value returns the value following key in the entry's args.
func (e Entry) Value(key string) (any, bool) {
	for i := 0; i+1 < len(e.Args); i += 2 {
		if k, ok := e.Args[i].(string); ok && k == key {
			return e.Args[i+1], true
		}
	}
	return nil, false
}
