// Package watcher keeps the sequence store in sync with FASTA corpus
// files on disk: file events are debounced, coalesced per path, and
// emitted as batches for the importer to apply.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed on a corpus file.
type Op int

const (
	// OpCreate is a new corpus file.
	OpCreate Op = iota
	// OpModify is a change to an existing corpus file.
	OpModify
	// OpDelete is a removed corpus file.
	OpDelete
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Event is a single observed change.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Options configures the watcher.
type Options struct {
	// DebounceWindow is how long to wait for rapid events on the same
	// path to settle before emitting. Default 200ms.
	DebounceWindow time.Duration

	// BufferSize is the event channel buffer. Default 64.
	BufferSize int

	// Extensions are the corpus file suffixes to react to.
	// Default: .fa, .fasta, .fa.gz, .fasta.gz.
	Extensions []string
}

// WithDefaults fills zero values with defaults.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 200 * time.Millisecond
	}
	if o.BufferSize == 0 {
		o.BufferSize = 64
	}
	if len(o.Extensions) == 0 {
		o.Extensions = []string{".fa", ".fasta", ".fa.gz", ".fasta.gz"}
	}
	return o
}

// Watcher observes a directory tree for corpus file changes.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	opts      Options

	events chan []Event
	errs   chan error
	stopCh chan struct{}

	mu      sync.Mutex
	stopped bool
}

// New creates a watcher. Call Start to begin observing.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	return &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		opts:      opts,
		events:    make(chan []Event, opts.BufferSize),
		errs:      make(chan error, 8),
		stopCh:    make(chan struct{}),
	}, nil
}

// Events returns debounced event batches. Closed when the watcher
// stops.
func (w *Watcher) Events() <-chan []Event {
	return w.events
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Start watches root (recursively) until ctx is cancelled or Stop is
// called. It blocks; run it in a goroutine.
func (w *Watcher) Start(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve watch root: %w", err)
	}

	if err := w.addRecursive(absRoot); err != nil {
		return fmt.Errorf("register watch tree: %w", err)
	}

	go w.forward(ctx)

	slog.Info("watching corpus directory", slog.String("root", absRoot))
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errs <- err:
			default:
				slog.Warn("watcher error channel full", slog.String("error", err.Error()))
			}
		}
	}
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true

	close(w.stopCh)
	err := w.fsw.Close()
	w.debouncer.Stop()
	return err
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		// New subdirectories must be added to the watch set
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				slog.Warn("watch new directory failed",
					slog.String("path", ev.Name),
					slog.String("error", err.Error()))
			}
			return
		}
	}

	if !w.isCorpusFile(ev.Name) {
		return
	}

	now := time.Now()
	switch {
	case ev.Has(fsnotify.Create):
		w.debouncer.Add(Event{Path: ev.Name, Op: OpCreate, Timestamp: now})
	case ev.Has(fsnotify.Write):
		w.debouncer.Add(Event{Path: ev.Name, Op: OpModify, Timestamp: now})
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.debouncer.Add(Event{Path: ev.Name, Op: OpDelete, Timestamp: now})
	}
}

// forward relays debounced batches to the public channel.
func (w *Watcher) forward(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			select {
			case w.events <- batch:
			default:
				slog.Warn("event channel full, dropping batch",
					slog.Int("batch_size", len(batch)))
			}
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) isCorpusFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range w.opts.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
