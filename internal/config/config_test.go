package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"curator/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.IncomingDir != filepath.Join(tempHome, "incoming") {
		t.Fatalf("unexpected incoming dir: %q", cfg.Paths.IncomingDir)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "library") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	wantUnsorted := filepath.Join(tempHome, "library", "unsorted")
	if cfg.Paths.UnsortedDir != wantUnsorted {
		t.Fatalf("unexpected unsorted dir: got %q want %q", cfg.Paths.UnsortedDir, wantUnsorted)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.FuzzyThreshold != 80 {
		t.Fatalf("unexpected fuzzy threshold: %d", cfg.TMDB.FuzzyThreshold)
	}
	if !cfg.TMDB.AdultRetry {
		t.Fatal("expected adult retry enabled by default")
	}
	if cfg.Plex.Enabled {
		t.Fatal("expected Plex disabled by default")
	}
	if len(cfg.Ingest.AllowedExtensions) == 0 || cfg.Ingest.AllowedExtensions[0] != ".mkv" {
		t.Fatalf("unexpected allowed extensions: %v", cfg.Ingest.AllowedExtensions)
	}
	if len(cfg.Kids.RequireGenreAny) != 2 {
		t.Fatalf("unexpected kids genres: %v", cfg.Kids.RequireGenreAny)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.IncomingDir, cfg.Paths.LibraryDir, cfg.Paths.UnsortedDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "curator.toml")

	type payload struct {
		TMDB struct {
			APIKey         string `toml:"api_key"`
			BaseURL        string `toml:"base_url"`
			FuzzyThreshold int    `toml:"fuzzy_threshold"`
		} `toml:"tmdb"`
		Paths struct {
			MoviesDir string `toml:"movies_dir"`
		} `toml:"paths"`
		Kids struct {
			MaxAge int `toml:"max_age"`
		} `toml:"kids"`
	}
	custom := payload{}
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb"
	custom.TMDB.FuzzyThreshold = 85
	custom.Paths.MoviesDir = "films"
	custom.Kids.MaxAge = 10
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("expected TMDB key from file, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected TMDB base url override, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.FuzzyThreshold != 85 {
		t.Fatalf("expected fuzzy threshold 85, got %d", cfg.TMDB.FuzzyThreshold)
	}
	if cfg.Paths.MoviesDir != "films" {
		t.Fatalf("expected movies dir override, got %q", cfg.Paths.MoviesDir)
	}
	if cfg.Kids.MaxAge != 10 {
		t.Fatalf("expected kids max age 10, got %d", cfg.Kids.MaxAge)
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "curator.toml")

	type payload struct {
		TMDB struct {
			APIKey string `toml:"api_key"`
		} `toml:"tmdb"`
	}
	custom := payload{}
	custom.TMDB.APIKey = ""

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("TMDB_API_KEY", "env-tmdb")
	t.Setenv("PLEX_TOKEN", "env-plex")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TMDB.APIKey != "env-tmdb" {
		t.Errorf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Plex.Token != "env-plex" {
		t.Errorf("expected Plex token from env, got %q", cfg.Plex.Token)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_tmdb_api_key_here") {
		t.Fatalf("sample config missing placeholder TMDB key: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.ManifestDB, "curator") {
			t.Fatalf("expected manifest path to contain curator, got %q", cfg.Paths.ManifestDB)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.TMDB.FuzzyThreshold = 120
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range fuzzy threshold")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.TMDB.RunCallLimit = cfg.TMDB.ItemCallLimit - 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when run limit below item limit")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Ingest.AllowedExtensions = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty allowed extensions")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Kids.MaxAge = 25
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for kids max age out of range")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Plex.Enabled = true
	cfg.Plex.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when Plex enabled without URL")
	}
}
