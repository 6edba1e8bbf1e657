// Package indexer drives the catalog pipeline: scan a source, decode each
// candidate once to derive a content checksum and loudness statistics,
// merge them with embedded tags, and persist the reconciled records.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"aria/internal/catalog"
	"aria/internal/config"
	"aria/internal/logging"
	"aria/internal/media"
	"aria/internal/tags"
)

// Indexer coordinates scanning, analysis, and persistence for the
// configured sources.
type Indexer struct {
	cfg           *config.Config
	store         *catalog.Store
	log           *slog.Logger
	tagReader     tags.Reader
	mirror        MirrorClient
	openContainer containerOpener
	progress      func(done, total int)
}

// Option adjusts an Indexer's collaborators.
type Option func(*Indexer)

// WithTagReader substitutes the tag reader.
func WithTagReader(reader tags.Reader) Option {
	return func(ix *Indexer) {
		ix.tagReader = reader
	}
}

// WithMirrorClient substitutes the remote mirror client.
func WithMirrorClient(client MirrorClient) Option {
	return func(ix *Indexer) {
		ix.mirror = client
	}
}

// WithProgress registers a progress callback. It is invoked once with
// done == 0 before any worker starts, then after each processed file.
// The done == 0 call happens before the workers are spawned, so callback
// state set up there is visible to every later invocation; the later
// invocations themselves run concurrently on worker goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(ix *Indexer) {
		ix.progress = fn
	}
}

// New assembles an indexer over the given store.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, opts ...Option) *Indexer {
	ix := &Indexer{
		cfg:           cfg,
		store:         store,
		log:           logging.NewComponentLogger(logger, "indexer"),
		tagReader:     tags.NewReader(),
		mirror:        NewHTTPMirrorClient(),
		openContainer: media.Open,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Summary reports the outcome of one source run.
type Summary struct {
	SourceID int64
	RunID    string
	Scanned  int
	Indexed  int
	Elapsed  time.Duration
}

// IndexAll runs every configured source in order and stops at the first
// failure.
func (ix *Indexer) IndexAll(ctx context.Context, force bool) ([]*Summary, error) {
	var summaries []*Summary
	for _, source := range ix.cfg.Sources {
		summary, err := ix.IndexSource(ctx, source, force)
		if err != nil {
			return summaries, fmt.Errorf("source %q: %w", source.Name, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// IndexSource runs one source to completion. The batch is all-or-nothing:
// any per-file failure aborts before a single record is written and leaves
// the source's last-indexed timestamp untouched.
func (ix *Indexer) IndexSource(ctx context.Context, source config.Source, force bool) (*Summary, error) {
	runID := uuid.NewString()[:8]
	log := ix.log.With(logging.FieldRunID, runID, logging.FieldSourceID, source.ID)

	if source.Kind == config.SourceRemote {
		return ix.indexRemote(ctx, source, runID, log)
	}
	return ix.indexLocal(ctx, source, force, runID, log)
}

func (ix *Indexer) indexLocal(ctx context.Context, source config.Source, force bool, runID string, log *slog.Logger) (*Summary, error) {
	start := time.Now().UTC()

	var cutoff time.Time
	if !force {
		ts, ok, err := ix.store.LastIndexed(ctx, source.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			cutoff = ts
		}
	}

	candidates, err := Scan(source.Path, force, cutoff)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", source.Path, err)
	}
	log.Info("scan complete", "candidates", len(candidates), "force", force)

	records, err := ix.processAll(ctx, source.ID, candidates, start)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		if err := ix.store.UpsertRecords(ctx, records); err != nil {
			return nil, err
		}
	}
	if err := ix.store.SetLastIndexed(ctx, source.ID, start); err != nil {
		return nil, err
	}

	summary := &Summary{
		SourceID: source.ID,
		RunID:    runID,
		Scanned:  len(candidates),
		Indexed:  len(records),
		Elapsed:  time.Since(start),
	}
	log.Info("index complete", "indexed", summary.Indexed, "elapsed", summary.Elapsed)
	return summary, nil
}

func (ix *Indexer) indexRemote(ctx context.Context, source config.Source, runID string, log *slog.Logger) (*Summary, error) {
	start := time.Now().UTC()

	records, err := ix.mirror.FetchRecords(ctx, source.Address)
	if err != nil {
		return nil, fmt.Errorf("fetch mirror %s: %w", source.Address, err)
	}
	for i := range records {
		records[i].SourceID = source.ID
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = start
		}
		records[i].UpdatedAt = start
	}

	if len(records) > 0 {
		if err := ix.store.UpsertRecords(ctx, records); err != nil {
			return nil, err
		}
	}
	if err := ix.store.SetLastIndexed(ctx, source.ID, start); err != nil {
		return nil, err
	}

	summary := &Summary{
		SourceID: source.ID,
		RunID:    runID,
		Scanned:  len(records),
		Indexed:  len(records),
		Elapsed:  time.Since(start),
	}
	log.Info("mirror sync complete", "indexed", summary.Indexed, "elapsed", summary.Elapsed)
	return summary, nil
}

// processAll fans candidates out across the worker pool. The first failure
// cancels the remaining work and fails the batch.
func (ix *Indexer) processAll(ctx context.Context, sourceID int64, candidates []Candidate, now time.Time) ([]catalog.Record, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := ix.cfg.Workers()
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan Candidate)
	results := make(chan catalog.Record, len(candidates))
	errs := make(chan error, 1)

	if ix.progress != nil {
		ix.progress(0, len(candidates))
	}

	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				record, err := ix.processFile(ctx, sourceID, cand, now)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					cancel()
					return
				}
				results <- record
				if ix.progress != nil {
					ix.progress(int(done.Add(1)), len(candidates))
				}
			}
		}()
	}

feed:
	for _, cand := range candidates {
		select {
		case jobs <- cand:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]catalog.Record, 0, len(candidates))
	for record := range results {
		records = append(records, record)
	}
	return records, nil
}
