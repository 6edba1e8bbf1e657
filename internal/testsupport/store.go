package testsupport

import (
	"context"
	"testing"
	"time"

	"aria/internal/catalog"
	"aria/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRecord inserts a minimal catalog record for tests.
func SeedRecord(t testing.TB, store *catalog.Store, checksum int64, sourceID int64, path string) {
	t.Helper()

	now := time.Now().UTC()
	record := catalog.Record{
		Checksum:  checksum,
		SourceID:  sourceID,
		Path:      path,
		Filename:  path,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.UpsertRecords(context.Background(), []catalog.Record{record}); err != nil {
		t.Fatalf("store.UpsertRecords: %v", err)
	}
}
