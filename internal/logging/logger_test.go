package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aria/internal/logging"
)

func TestConsoleOutputIncludesComponentAndAttrs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	scoped := logging.NewComponentLogger(logger, "indexer")
	scoped.Info("scan complete", logging.Int("files", 12), logging.String("note", "two words"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, " INFO indexer: scan complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "files=12") {
		t.Fatalf("missing attr in line: %q", line)
	}
	if !strings.Contains(line, `note="two words"`) {
		t.Fatalf("expected quoted value in line: %q", line)
	}
}

func TestConsoleLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria.log")
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should have been filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestJSONOutputUsesShortKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logger.Error("boom", logging.String(logging.FieldSourceID, "7"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record["msg"] != "boom" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["level"] != "error" {
		t.Fatalf("level = %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("ts key missing")
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
