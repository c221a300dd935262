package notes

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/laguz/internal/models"
)

// EventCallback is called for each observed note change.
// kind is one of "created", "updated", "removed".
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on a directory-backed store root and
// processes file change events until ctx is cancelled. External writes to
// note records trigger a debounced Reload so the in-memory caches keep
// mirroring the store; cb (if non-nil) is called per event so outer layers
// can fan the change out.
//
// The model's own writes land in the same directory and re-trigger the
// watcher; the resulting reload is redundant but harmless since the store
// is the source of truth.
func Watch(ctx context.Context, model *Model, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reloadTimer debounces bursts of events into a single reload.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			if err := model.Reload(); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Debug("watcher: reloaded", slog.Int("notes", model.Len()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// Only records following the note naming scheme matter;
			// temp files and unrelated keys are ignored.
			key := filepath.Base(ev.Name)
			if !models.IsNoteKey(key) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				scheduleReload()
				if cb != nil {
					cb("created", key)
				}
			case ev.Op&fsnotify.Write != 0:
				scheduleReload()
				if cb != nil {
					cb("updated", key)
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				scheduleReload()
				if cb != nil {
					cb("removed", key)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
