// Package watch runs the pipeline on documents dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is processed.
const DefaultSettle = 500 * time.Millisecond

// sidecarSuffixes mark files this tool wrote itself.
var sidecarSuffixes = []string{"_meta.json", "_meta.yaml", "_metadata.txt"}

type Options struct {
	Settle time.Duration
	// Existing processes documents already in the directory on start.
	Existing bool
	// OnResult, when set, is called after each processed file.
	OnResult func(path string, out pipeline.Outcome)
}

type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	pipeline *pipeline.Pipeline
	opts     Options
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	// done is closed when Run returns; pending timers stop delivering.
	done chan struct{}
}

// New starts watching dir. Events that arrive before Run are buffered.
func New(p *pipeline.Pipeline, dir string, opts Options, logger *slog.Logger) (*Watcher, error) {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		fsw:      fsw,
		dir:      dir,
		pipeline: p,
		opts:     opts,
		logger:   logger,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan string, 64),
		done:     make(chan struct{}),
	}, nil
}

// IsCandidate reports whether path is a document the pipeline accepts and
// not one of its own sidecars.
func IsCandidate(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, suffix := range sidecarSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return slices.Contains(models.SupportedExtensions(), models.ExtOf(name))
}

// Run processes files until ctx is cancelled, then closes the watcher.
// Files are handled one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer close(w.done)

	if w.opts.Existing {
		if err := w.queueExisting(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsCandidate(event.Name) {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)
		case path := <-w.ready:
			w.process(ctx, path)
		}
	}
}

// schedule (re)starts the settle timer for path, so a burst of writes
// produces a single run.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.opts.Settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.opts.Settle, func() { w.settled(path) })
}

// settled hands path to Run, or drops it once Run has returned.
func (w *Watcher) settled(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
	select {
	case w.ready <- path:
	case <-w.done:
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) queueExisting() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", w.dir, err)
	}
	var paths []string
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if !e.IsDir() && IsCandidate(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	for _, path := range paths {
		w.schedule(path)
	}
	return nil
}

func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		// Removed or renamed before it settled.
		return
	}
	w.logger.Info("Processing dropped file", "file", path)
	out := w.pipeline.Generate(ctx, path)
	if w.opts.OnResult != nil {
		w.opts.OnResult(path, out)
	}
}
