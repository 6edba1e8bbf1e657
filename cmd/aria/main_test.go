package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aria/internal/testsupport"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	musicDir := filepath.Join(base, "music")
	if err := os.MkdirAll(musicDir, 0o755); err != nil {
		t.Fatalf("mkdir music dir: %v", err)
	}

	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[indexing]
workers = 2

[logging]
format = "json"
level = "warn"

[[sources]]
id = 1
name = "music"
path = %q
kind = "local"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"), musicDir)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("output %q does not mention %s", output, target)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite succeeded")
	}
}

func TestIndexThenListRoundTrip(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	testsupport.WriteTone(t, filepath.Join(base, "music", "tone.wav"), 44100, 440, 0.5)

	output, err := runCLI(t, "--config", configPath, "index")
	if err != nil {
		t.Fatalf("index: %v\n%s", err, output)
	}
	if !strings.Contains(output, "music") {
		t.Fatalf("index output missing source name:\n%s", output)
	}

	output, err = runCLI(t, "--config", configPath, "list")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "tone.wav") {
		t.Fatalf("list output missing record:\n%s", output)
	}
	if !strings.Contains(output, "1 records") {
		t.Fatalf("list output missing count:\n%s", output)
	}
}

func TestSourcesCommandShowsFootprint(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	testsupport.WriteTone(t, filepath.Join(base, "music", "tone.wav"), 44100, 440, 0.5)

	if output, err := runCLI(t, "--config", configPath, "index"); err != nil {
		t.Fatalf("index: %v\n%s", err, output)
	}

	output, err := runCLI(t, "--config", configPath, "sources")
	if err != nil {
		t.Fatalf("sources: %v\n%s", err, output)
	}
	if !strings.Contains(output, "music") || !strings.Contains(output, "local") {
		t.Fatalf("sources output incomplete:\n%s", output)
	}
}

func TestPurgeRemovesSourceRecords(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	testsupport.WriteTone(t, filepath.Join(base, "music", "tone.wav"), 44100, 440, 0.5)

	if output, err := runCLI(t, "--config", configPath, "index"); err != nil {
		t.Fatalf("index: %v\n%s", err, output)
	}

	output, err := runCLI(t, "--config", configPath, "purge", "music")
	if err != nil {
		t.Fatalf("purge: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Removed 1 records") {
		t.Fatalf("purge output unexpected:\n%s", output)
	}

	output, err = runCLI(t, "--config", configPath, "list")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "0 records") {
		t.Fatalf("records survived purge:\n%s", output)
	}
}

func TestUnknownSourceArgument(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	if _, err := runCLI(t, "--config", configPath, "index", "nonexistent"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestConfigShowRendersEffectiveConfig(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	output, err := runCLI(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(output, "[paths]") || !strings.Contains(output, "data_dir") {
		t.Fatalf("output missing paths section:\n%s", output)
	}
	if !strings.Contains(output, "name = 'music'") && !strings.Contains(output, `name = "music"`) {
		t.Fatalf("output missing configured source:\n%s", output)
	}
	if !strings.Contains(output, "workers = 2") {
		t.Fatalf("output missing normalized worker count:\n%s", output)
	}
}

func TestConfigPathPrintsResolvedLocation(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	output, err := runCLI(t, "--config", configPath, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(strings.Split(output, "\n")[0]) != configPath {
		t.Fatalf("output %q, want path %s on the first line", output, configPath)
	}

	missing := filepath.Join(base, "absent.toml")
	output, err = runCLI(t, "--config", missing, "config", "path")
	if err != nil {
		t.Fatalf("config path (missing file): %v", err)
	}
	if !strings.Contains(output, missing) || !strings.Contains(output, "config init") {
		t.Fatalf("output %q, want resolved path and init hint", output)
	}
}
