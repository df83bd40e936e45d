package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/silt/pkg/core"
)

// Watch observes the database directory and emits an event whenever a
// collection whose name matches the glob pattern changes on disk. The
// returned channel closes when the context is cancelled.
func (db *Database) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	events := make(chan core.Event, 16)
	w := newWatchWorker(db, pattern, events)

	if err := w.Start(ctx); err != nil {
		close(events)
		return nil, err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		if err := w.Stop(context.Background()); err != nil {
			db.config.Logger.Debug("watcher stop", "error", err)
		}
		close(events)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		if db.config.ErrorHandler != nil {
			db.config.ErrorHandler(fmt.Errorf("watcher shutdown panic: %w", err))
		} else {
			db.config.Logger.Error("watcher shutdown panic", "error", err)
		}
	}))

	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	db        *Database
	pattern   string
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(db *Database, pattern string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		db:         db,
		pattern:    pattern,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(w.db.Dir()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch database directory: %w", err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(50 * time.Millisecond)
	w.db.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)

			var stack string
			if w.db.config.Logger.Enabled(ctx, slog.LevelDebug) {
				stack = string(debug.Stack())
			}

			if stack != "" {
				w.db.config.Logger.Error("watcher panic", "error", panicErr, "stack", stack)
			} else {
				w.db.config.Logger.Error("watcher panic", "error", panicErr)
			}
		}
	}()
	defer w.db.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.eventLoop(ctx)

	// Drain the debouncer before the caller closes the events channel.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

func (w *watchWorker) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.db.config.Logger.Error("fsnotify error", "error", wErr)
			if w.db.config.ErrorHandler != nil {
				w.db.config.ErrorHandler(wErr)
			}
		}
	}
}

// processFilesystemEvent filters, maps and debounces one fsnotify event.
// Temp files from atomic writes and non-collection files are ignored.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) {
	w.db.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return
	}
	if filepath.Ext(name) != ".json" {
		return
	}

	collection := strings.TrimSuffix(name, ".json")
	if match, err := doublestar.Match(w.pattern, collection); err != nil || !match {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	w.sendEvent(ctx, core.Event{
		Type:       eType,
		Collection: collection,
		Timestamp:  time.Now().Unix(),
	})
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// sendEvent enqueues an event via the debouncer, protecting against channel
// closure during shutdown.
func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		defer func() {
			// Recover from panic if channel was closed (worker stopping)
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}
