package content

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/logging"
)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 300 * time.Millisecond

// DebounceState is the state of a Debouncer.
type DebounceState int

const (
	Idle DebounceState = iota
	PendingReload
	Reloading
)

func (s DebounceState) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingReload:
		return "pending"
	case Reloading:
		return "reloading"
	}
	return fmt.Sprintf("DebounceState(%d)", int(s))
}

// Timer is the subset of *time.Timer used by Debouncer.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs reload once per burst of Trigger calls.
//
// Idle -> PendingReload on the first event; further events restart the
// delay. When it expires the state is Reloading until reload returns. An
// event arriving during Reloading queues exactly one follow-up, armed when
// the running reload finishes.
type Debouncer struct {
	mu        sync.Mutex
	state     DebounceState
	queued    bool
	stopped   bool
	timer     Timer
	gen       uint64 // identifies the armed timer
	delay     time.Duration
	reload    func()
	afterFunc AfterFunc
}

// DebouncerOption configures a Debouncer.
type DebouncerOption func(*Debouncer)

// WithClock replaces the timer source.
func WithClock(fn AfterFunc) DebouncerOption {
	return func(d *Debouncer) {
		if fn != nil {
			d.afterFunc = fn
		}
	}
}

// NewDebouncer creates a debouncer calling reload after delay of quiet.
// A non-positive delay selects DefaultDebounce.
func NewDebouncer(delay time.Duration, reload func(), opts ...DebouncerOption) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	d := &Debouncer{delay: delay, reload: reload, afterFunc: realAfterFunc}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger records a file event.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	switch d.state {
	case Idle:
		d.state = PendingReload
		d.arm()
	case PendingReload:
		if d.timer != nil {
			d.timer.Stop()
		}
		d.arm()
	case Reloading:
		d.queued = true
	}
}

// State returns the current state.
func (d *Debouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stop cancels a pending reload and ignores later events. A reload already
// running completes.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.queued = false
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.state == PendingReload {
		d.state = Idle
	}
}

// arm must be called with mu held.
func (d *Debouncer) arm() {
	d.gen++
	gen := d.gen
	d.timer = d.afterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.state != PendingReload || d.gen != gen {
		d.mu.Unlock()
		return
	}
	d.state = Reloading
	d.timer = nil
	d.mu.Unlock()

	d.reload()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queued && !d.stopped {
		d.queued = false
		d.state = PendingReload
		d.arm()
		return
	}
	d.state = Idle
}

// Watcher feeds fsnotify events for Markdown files into per-directory
// debouncers.
type Watcher struct {
	fsw     *fsnotify.Watcher
	logger  logging.Logger
	mu      sync.Mutex
	targets map[string]*Debouncer
}

// NewWatcher creates a Watcher. Close it, or let Run return, to release the
// underlying watch descriptors.
func NewWatcher(logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		fsw:     fsw,
		logger:  logging.OrNoOp(logger),
		targets: make(map[string]*Debouncer),
	}, nil
}

// Add watches dir and routes its Markdown events to d.
func (w *Watcher) Add(dir string, d *Debouncer) error {
	dir = filepath.Clean(dir)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.mu.Lock()
	w.targets[dir] = d
	w.mu.Unlock()
	w.logger.Debug("watching", "dir", dir)
	return nil
}

// WatchRepository watches repo's directory and refreshes it after each
// burst of changes.
func (w *Watcher) WatchRepository(ctx context.Context, repo *Repository, delay time.Duration) error {
	d := NewDebouncer(delay, func() {
		if _, err := repo.Refresh(ctx); err != nil {
			w.logger.Error("watch reload failed", "kind", repo.Kind(), "error", err)
		}
	})
	return w.Add(repo.Dir(), d)
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopAll()
	for {
		select {
		case <-ctx.Done():
			return w.fsw.Close()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.stopAll()
	return w.fsw.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !relevant(event) {
		return
	}
	w.mu.Lock()
	d := w.targets[filepath.Dir(filepath.Clean(event.Name))]
	w.mu.Unlock()
	if d == nil {
		return
	}
	w.logger.Debug("content changed", "file", event.Name, "op", event.Op.String())
	d.Trigger()
}

func (w *Watcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range w.targets {
		d.Stop()
	}
}

// relevant reports whether event touches a Markdown file in a way that can
// change the loaded set.
func relevant(event fsnotify.Event) bool {
	if !fileutil.IsMarkdown(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
