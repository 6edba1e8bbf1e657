package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aria/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if resolved != missing {
		t.Fatalf("resolved path = %q, want %q", resolved, missing)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Sources) != 0 {
		t.Fatalf("expected no default sources, got %d", len(cfg.Sources))
	}
}

func TestLoadParsesSources(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
data_dir = "`+filepath.Join(base, "data")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[[sources]]
id = 3
name = "music"
path = "`+base+`"

[[sources]]
id = 4
name = "mirror"
kind = "remote"
address = "https://mirror.example"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].Kind != config.SourceLocal {
		t.Fatalf("expected kind to default to local, got %q", cfg.Sources[0].Kind)
	}
	locals := cfg.LocalSources()
	if len(locals) != 1 || locals[0].ID != 3 {
		t.Fatalf("unexpected local sources: %+v", locals)
	}
	if _, ok := cfg.SourceByID(4); !ok {
		t.Fatal("SourceByID(4) not found")
	}
}

func TestLoadRejectsDuplicateSourceIDs(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[[sources]]
id = 1
name = "a"
path = "`+base+`"

[[sources]]
id = 1
name = "b"
path = "`+base+`"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected duplicate id error")
	} else if !strings.Contains(err.Error(), "share id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsOutOfRangeSourceID(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[[sources]]
id = 4096
name = "big"
path = "`+base+`"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected out-of-range id error")
	}
}

func TestLoadRejectsLocalSourceWithoutPath(t *testing.T) {
	path := writeConfig(t, `
[[sources]]
id = 1
name = "nopath"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "xml"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "music" {
		t.Fatalf("unexpected sample sources: %+v", cfg.Sources)
	}
}
