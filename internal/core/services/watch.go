package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driving"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last filesystem
// event before reseeding. Document copies arrive as bursts of writes, so
// reacting to every event would reseed mid-copy.
const DefaultDebounce = 2 * time.Second

// Watcher keeps the seeded corpus in sync with the seed directory by
// reseeding after the directory settles.
type Watcher struct {
	ingestor driving.Ingestor
	dir      string
	debounce time.Duration
}

// NewWatcher creates a watcher for dir. A non-positive debounce gets
// DefaultDebounce.
func NewWatcher(ingestor driving.Ingestor, dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{ingestor: ingestor, dir: dir, debounce: debounce}
}

// Run watches the seed directory until ctx is cancelled. Each burst of
// create/write/remove/rename events triggers one full reseed once the
// directory has been quiet for the debounce interval.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	logger.Info("watching %s", w.dir)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("seed directory changed: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-pending:
			timer = nil
			pending = nil
			results, err := w.ingestor.SeedDirectory(ctx, w.dir)
			if err != nil {
				logger.Warn("reseed failed: %v", err)
				continue
			}
			logger.Info("reseeded %d documents", len(results))
		}
	}
}
