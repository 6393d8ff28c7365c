package dc

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/marmos91/dbss/internal/logger"
)

// Watcher reloads the schema from disk whenever one of its source files
// changes, and publishes the freshly parsed Schema on Reloaded. The
// classifier built atop it is read-only per request per §4.4, so a reload
// simply swaps in a new Schema and Classifier for subsequent lookups.
type Watcher struct {
	paths    []string
	watcher  *fsnotify.Watcher
	Reloaded chan *Schema
}

// NewWatcher starts watching paths for changes. Callers must call Close.
func NewWatcher(paths []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		paths:    paths,
		watcher:  fw,
		Reloaded: make(chan *Schema, 1),
	}
	return w, nil
}

// Run processes filesystem events until ctx is canceled, reloading and
// publishing a new Schema after any write or create event. Parse errors
// are logged and skipped; the previous Schema stays in effect.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			schema, err := LoadFiles(w.paths)
			if err != nil {
				logger.Warn("dc schema reload failed", logger.Reason(err.Error()))
				continue
			}
			select {
			case w.Reloaded <- schema:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("dc schema watcher error", logger.Reason(err.Error()))
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
