// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"aria/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Indexing.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithSource appends a local source rooted at a fresh temp subdirectory and
// returns its music directory through the provided pointer.
func WithSource(id int64, name string, dir *string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, name)
		if err := os.MkdirAll(path, 0o755); err != nil {
			b.t.Fatalf("mkdir source dir: %v", err)
		}
		b.cfg.Sources = append(b.cfg.Sources, config.Source{
			ID:   id,
			Name: name,
			Path: path,
			Kind: config.SourceLocal,
		})
		if dir != nil {
			*dir = path
		}
	}
}

// WithWorkers overrides the indexing worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Indexing.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
