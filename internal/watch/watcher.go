// Package watch re-runs a schema repair whenever the schema file changes.
//
// Prisma introspection (prisma db pull) regenerates the whole schema, which
// brings malformed relation fields back. Watch mode keeps the file clean
// while a developer iterates on the database.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups bursts of events from one save into one repair.
const DefaultDebounce = 200 * time.Millisecond

// Handler is called with the watched path after it settles.
type Handler func(ctx context.Context, path string) error

// Watcher watches a single file. Editors and Prisma often replace a file
// rather than writing it in place, so the parent directory is watched and
// events are filtered by name.
type Watcher struct {
	path     string
	debounce time.Duration
	handle   Handler
	log      *zap.Logger
	fsw      *fsnotify.Watcher
}

// New creates a Watcher for path. Events are recorded from the moment New
// returns; the handler runs once Run is called. Run must be called to
// release the underlying watcher.
func New(path string, debounce time.Duration, handle Handler, log *zap.Logger) (*Watcher, error) {
	if handle == nil {
		return nil, errors.New("watch: handler is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		handle:   handle,
		log:      log.With(zap.String("path", abs)),
		fsw:      fsw,
	}, nil
}

// Run blocks, invoking the handler after each change, until ctx is done.
// Handler errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.log.Debug("watching schema")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("schema event", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.handle(ctx, w.path); err != nil {
				w.log.Error("repair failed", zap.Error(err))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// relevant reports whether event touches the watched file with an
// operation that can change its content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
