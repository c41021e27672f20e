package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/manifest"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	incoming   string
	manifestDB string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		incoming:   filepath.Join(base, "incoming"),
		manifestDB: filepath.Join(base, "manifest.db"),
	}
	if err := os.MkdirAll(env.incoming, 0o755); err != nil {
		t.Fatalf("create incoming dir: %v", err)
	}

	content := fmt.Sprintf(`[paths]
incoming_dir = %q
library_dir = %q
unsorted_dir = %q
log_dir = %q
manifest_db = %q

[tmdb]
api_key = "test"
`,
		env.incoming,
		filepath.Join(base, "library"),
		filepath.Join(base, "library", "unsorted"),
		filepath.Join(base, "logs"),
		env.manifestDB,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got %q", want, output)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite guard, got %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "api_key = '***'")
	if strings.Contains(out, "api_key = 'test'") {
		t.Fatalf("expected api key masked, got %q", out)
	}
	requireContains(t, out, "[paths]")
}

func TestScanListsEligibleFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	for name, content := range map[string]string{
		"Feature.2020.mkv": "payload",
		"notes.txt":        "skip me",
	} {
		if err := os.WriteFile(filepath.Join(env.incoming, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write incoming file: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Feature.2020.mkv")
	if strings.Contains(out, "notes.txt") {
		t.Fatalf("expected non-media file skipped, got %q", out)
	}

	out, _, err = runCLI(t, []string{"scan", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("scan --json: %v", err)
	}
	requireContains(t, out, `"incoming"`)
	requireContains(t, out, "Feature.2020.mkv")
}

func TestScanEmptyIncoming(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "No eligible files")
}

func TestRunCommandEmptyIncoming(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Processed 0 files")

	// The empty run is still recorded.
	out, _, err = runCLI(t, []string{"manifest", "runs"}, env.configPath)
	if err != nil {
		t.Fatalf("manifest runs: %v", err)
	}
	requireContains(t, out, "Run")
}

func TestManifestCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"manifest", "runs"}, env.configPath)
	if err != nil {
		t.Fatalf("manifest runs: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	store, err := manifest.OpenPath(env.manifestDB)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	ctx := context.Background()
	run, err := store.BeginRun(ctx)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	record := &manifest.Record{
		RunID:  run.ID,
		Source: "/incoming/The.Matrix.1999.mkv",
		Kind:   "movie",
		Title:  "The Matrix",
		Year:   1999,
		Score:  100,
	}
	if err := store.AddRecord(ctx, record); err != nil {
		t.Fatalf("add record: %v", err)
	}
	summary := manifest.Summary{Total: 1, Movies: 1}
	if err := store.FinishRun(ctx, run.ID, summary); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close manifest: %v", err)
	}

	out, _, err = runCLI(t, []string{"manifest", "runs"}, env.configPath)
	if err != nil {
		t.Fatalf("manifest runs: %v", err)
	}
	requireContains(t, out, run.ID)

	out, _, err = runCLI(t, []string{"manifest", "records"}, env.configPath)
	if err != nil {
		t.Fatalf("manifest records: %v", err)
	}
	requireContains(t, out, "The Matrix (1999)")

	out, _, err = runCLI(t, []string{"manifest", "records", run.ID, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("manifest records --json: %v", err)
	}
	requireContains(t, out, `"kind": "movie"`)

	out, _, err = runCLI(t, []string{"manifest", "records", "--kind", "tv"}, env.configPath)
	if err != nil {
		t.Fatalf("manifest records --kind: %v", err)
	}
	requireContains(t, out, "No records for run")

	out, _, err = runCLI(t, []string{"manifest", "prune", "--keep-days", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("manifest prune: %v", err)
	}
	requireContains(t, out, "Removed 0 runs")
}
