// Package watcher keeps the catalog current by triggering incremental
// reindexes from filesystem events. Events are coalesced per source over a
// debounce window so a burst of copies results in one run.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"aria/internal/config"
	"aria/internal/indexer"
	"aria/internal/logging"
)

const defaultDebounce = 2 * time.Second

// Reindexer is the slice of the indexer the watcher drives.
type Reindexer interface {
	IndexSource(ctx context.Context, source config.Source, force bool) (*indexer.Summary, error)
}

// Watcher follows the local source trees and reindexes dirty sources.
type Watcher struct {
	cfg      *config.Config
	reindex  Reindexer
	log      *slog.Logger
	debounce time.Duration
}

// Option adjusts watcher behavior.
type Option func(*Watcher)

// WithDebounce overrides the configured debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New builds a watcher over the config's local sources.
func New(cfg *config.Config, reindex Reindexer, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		cfg:      cfg,
		reindex:  reindex,
		log:      logging.NewComponentLogger(logger, "watcher"),
		debounce: defaultDebounce,
	}
	if cfg.Indexing.WatchDebounceSeconds > 0 {
		w.debounce = time.Duration(cfg.Indexing.WatchDebounceSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is canceled. Reindex failures are logged, not
// fatal: a single bad batch must not stop the watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	sources := w.cfg.LocalSources()
	for _, src := range sources {
		if err := addRecursive(fw, src.Path); err != nil {
			return err
		}
		w.log.Info("watching source", logging.FieldSourceID, src.ID, logging.FieldPath, src.Path)
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	dirty := make(map[int64]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// New directories must join the watch before files land in them.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(fw, event.Name); err != nil {
						w.log.Warn("watch new directory", logging.FieldPath, event.Name, "error", err)
					}
				}
			}
			if src, ok := sourceFor(sources, event.Name); ok {
				dirty[src.ID] = true
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-timer.C:
			for id := range dirty {
				src, ok := w.cfg.SourceByID(id)
				if !ok {
					continue
				}
				if _, err := w.reindex.IndexSource(ctx, src, false); err != nil {
					w.log.Error("incremental reindex failed",
						logging.FieldSourceID, id, "error", err)
				}
			}
			dirty = make(map[int64]bool)
		}
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return fw.Add(path)
	})
}

func sourceFor(sources []config.Source, path string) (config.Source, bool) {
	for _, src := range sources {
		if path == src.Path || strings.HasPrefix(path, src.Path+string(os.PathSeparator)) {
			return src, true
		}
	}
	return config.Source{}, false
}
