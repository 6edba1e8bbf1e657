package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"aria/internal/preflight"
	"aria/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckDirectoryAccess("Data directory", dir)
	if !result.Passed {
		t.Fatalf("writable directory failed: %s", result.Detail)
	}

	missing := preflight.CheckDirectoryAccess("Data directory", filepath.Join(dir, "absent"))
	if missing.Passed {
		t.Fatal("missing directory passed")
	}
	if !strings.Contains(missing.Detail, "does not exist") {
		t.Fatalf("detail = %q", missing.Detail)
	}
}

func TestCheckDirectoryAccessRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	testsupport.WriteFile(t, path, 1)

	if result := preflight.CheckDirectoryAccess("Data directory", path); result.Passed {
		t.Fatal("plain file passed directory check")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := preflight.CheckDiskSpace("Data volume", t.TempDir())
	if !result.Passed {
		t.Fatalf("temp volume failed: %s", result.Detail)
	}
}

func TestCheckMirror(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ok := preflight.CheckMirror(context.Background(), "Source \"mirror\"", server.URL)
	if !ok.Passed {
		t.Fatalf("healthy mirror failed: %s", ok.Detail)
	}

	if result := preflight.CheckMirror(context.Background(), "mirror", ""); result.Passed {
		t.Fatal("empty address passed")
	}
}

func TestCheckMirrorUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if result := preflight.CheckMirror(context.Background(), "mirror", server.URL); result.Passed {
		t.Fatal("500 mirror passed")
	}
}

func TestRunAllCoversConfiguredSources(t *testing.T) {
	var dir string
	cfg := testsupport.NewConfig(t, testsupport.WithSource(1, "music", &dir))

	results := preflight.RunAll(context.Background(), cfg)
	// Data directory, data volume, one source.
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !preflight.Passed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
}
