package watcher_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"aria/internal/config"
	"aria/internal/indexer"
	"aria/internal/logging"
	"aria/internal/testsupport"
	"aria/internal/watcher"
)

type recordingReindexer struct {
	calls chan int64
}

func (r *recordingReindexer) IndexSource(_ context.Context, source config.Source, force bool) (*indexer.Summary, error) {
	if force {
		return nil, nil
	}
	r.calls <- source.ID
	return &indexer.Summary{SourceID: source.ID}, nil
}

func TestWatcherTriggersDebouncedReindex(t *testing.T) {
	var dir string
	cfg := testsupport.NewConfig(t, testsupport.WithSource(1, "music", &dir))

	reindex := &recordingReindexer{calls: make(chan int64, 8)}
	w := watcher.New(cfg, reindex, logging.NewNop(), watcher.WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	// Give the watch a moment to attach before producing events.
	time.Sleep(100 * time.Millisecond)

	// A burst of writes must collapse into one reindex of the source.
	testsupport.WriteTone(t, filepath.Join(dir, "one.wav"), 44100, 440, 0.1)
	testsupport.WriteTone(t, filepath.Join(dir, "two.wav"), 44100, 880, 0.1)

	select {
	case id := <-reindex.calls:
		if id != 1 {
			t.Fatalf("reindexed source %d, want 1", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never triggered a reindex")
	}

	// Quiet period: no further runs without new events.
	select {
	case id := <-reindex.calls:
		t.Fatalf("unexpected extra reindex of source %d", id)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherFailsOnMissingSourceRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Sources = append(cfg.Sources, config.Source{
		ID:   1,
		Name: "ghost",
		Path: filepath.Join(testsupport.BaseDir(cfg), "absent"),
		Kind: config.SourceLocal,
	})

	w := watcher.New(cfg, &recordingReindexer{calls: make(chan int64, 1)}, logging.NewNop())
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing source root")
	}
}
