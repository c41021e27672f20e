package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for ingest and library output.
type Paths struct {
	IncomingDir   string `toml:"incoming_dir"`
	LibraryDir    string `toml:"library_dir"`
	MoviesDir     string `toml:"movies_dir"`
	TVDir         string `toml:"tv_dir"`
	MoviesKidsDir string `toml:"movies_kids_dir"`
	TVKidsDir     string `toml:"tv_kids_dir"`
	UnsortedDir   string `toml:"unsorted_dir"`
	LogDir        string `toml:"log_dir"`
	ManifestDB    string `toml:"manifest_db"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	FuzzyThreshold int    `toml:"fuzzy_threshold"`
	ItemCallLimit  int    `toml:"item_call_limit"`
	RunCallLimit   int    `toml:"run_call_limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	AdultRetry     bool   `toml:"adult_retry"`
}

// Kids contains the policy for routing titles to the children sections.
type Kids struct {
	MaxAge            int      `toml:"max_age"`
	RequireGenreAny   []string `toml:"require_genre_any"`
	BlacklistKeywords []string `toml:"blacklist_keywords"`
}

// Ingest contains configuration for the incoming-directory watcher and
// run concurrency.
type Ingest struct {
	AllowedExtensions   []string `toml:"allowed_extensions"`
	SidecarExtensions   []string `toml:"sidecar_extensions"`
	StableSeconds       int      `toml:"stable_seconds"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	Workers             int      `toml:"workers"`
}

// Plex contains configuration for Plex Media Server section refreshes.
type Plex struct {
	Enabled           bool   `toml:"enabled"`
	URL               string `toml:"url"`
	Token             string `toml:"token"`
	MoviesSection     string `toml:"movies_section"`
	TVSection         string `toml:"tv_section"`
	MoviesKidsSection string `toml:"movies_kids_section"`
	TVKidsSection     string `toml:"tv_kids_section"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RefreshPerPath    bool   `toml:"refresh_per_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Curator.
//
// Configuration sections by subsystem:
//   - Paths: incoming, library, and manifest directories
//   - TMDB: catalog lookups, call budgets, and match thresholds
//   - Kids: certification/genre policy for the children sections
//   - Ingest: watcher extensions, stability window, and worker count
//   - Plex: media server section refresh integration
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	TMDB    TMDB    `toml:"tmdb"`
	Kids    Kids    `toml:"kids"`
	Ingest  Ingest  `toml:"ingest"`
	Plex    Plex    `toml:"plex"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/curator/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/curator/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("curator.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
// LibraryDir is created on a best-effort basis so runs can start when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.IncomingDir, c.Paths.UnsortedDir, c.Paths.LogDir, filepath.Dir(c.Paths.ManifestDB)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// MoviesPath returns the absolute movies section directory.
func (c *Config) MoviesPath() string {
	return filepath.Join(c.Paths.LibraryDir, c.Paths.MoviesDir)
}

// TVPath returns the absolute TV section directory.
func (c *Config) TVPath() string {
	return filepath.Join(c.Paths.LibraryDir, c.Paths.TVDir)
}

// MoviesKidsPath returns the absolute children movies section directory.
func (c *Config) MoviesKidsPath() string {
	return filepath.Join(c.Paths.LibraryDir, c.Paths.MoviesKidsDir)
}

// TVKidsPath returns the absolute children TV section directory.
func (c *Config) TVKidsPath() string {
	return filepath.Join(c.Paths.LibraryDir, c.Paths.TVKidsDir)
}

// StableWindow returns the watcher stability window as a duration.
func (c *Config) StableWindow() time.Duration {
	return time.Duration(c.Ingest.StableSeconds) * time.Second
}

// PollInterval returns the watcher poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Ingest.PollIntervalSeconds) * time.Second
}

// CatalogTimeout returns the per-call TMDB timeout as a duration.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.TMDB.TimeoutSeconds) * time.Second
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeKids()
	c.normalizeIngest()
	c.normalizePlex()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.IncomingDir, err = expandPath(c.Paths.IncomingDir); err != nil {
		return fmt.Errorf("paths.incoming_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.UnsortedDir) == "" {
		c.Paths.UnsortedDir = filepath.Join(c.Paths.LibraryDir, defaultUnsortedDir)
	}
	if c.Paths.UnsortedDir, err = expandPath(c.Paths.UnsortedDir); err != nil {
		return fmt.Errorf("paths.unsorted_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ManifestDB) == "" {
		c.Paths.ManifestDB = defaultManifestDB
	}
	if c.Paths.ManifestDB, err = expandPath(c.Paths.ManifestDB); err != nil {
		return fmt.Errorf("paths.manifest_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.FuzzyThreshold <= 0 {
		c.TMDB.FuzzyThreshold = defaultFuzzyThreshold
	}
	if c.TMDB.ItemCallLimit <= 0 {
		c.TMDB.ItemCallLimit = defaultItemCallLimit
	}
	if c.TMDB.RunCallLimit <= 0 {
		c.TMDB.RunCallLimit = defaultRunCallLimit
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultTMDBTimeoutSeconds
	}
}

func (c *Config) normalizeKids() {
	if c.Kids.MaxAge <= 0 {
		c.Kids.MaxAge = defaultKidsMaxAge
	}
	c.Kids.RequireGenreAny = normalizeList(c.Kids.RequireGenreAny)
	if len(c.Kids.RequireGenreAny) == 0 {
		c.Kids.RequireGenreAny = defaultKidsGenres()
	}
	c.Kids.BlacklistKeywords = normalizeList(c.Kids.BlacklistKeywords)
}

func (c *Config) normalizeIngest() {
	c.Ingest.AllowedExtensions = normalizeExtensions(c.Ingest.AllowedExtensions)
	if len(c.Ingest.AllowedExtensions) == 0 {
		c.Ingest.AllowedExtensions = defaultAllowedExtensions()
	}
	c.Ingest.SidecarExtensions = normalizeExtensions(c.Ingest.SidecarExtensions)
	if len(c.Ingest.SidecarExtensions) == 0 {
		c.Ingest.SidecarExtensions = defaultSidecarExtensions()
	}
	if c.Ingest.StableSeconds <= 0 {
		c.Ingest.StableSeconds = defaultStableSeconds
	}
	if c.Ingest.PollIntervalSeconds <= 0 {
		c.Ingest.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = defaultIngestWorkers
	}
}

func (c *Config) normalizePlex() {
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = strings.TrimSpace(value)
		}
	}
	c.Plex.URL = strings.TrimSpace(c.Plex.URL)
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	if c.Plex.TimeoutSeconds <= 0 {
		c.Plex.TimeoutSeconds = defaultPlexTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func normalizeExtensions(values []string) []string {
	out := normalizeList(values)
	for i, ext := range out {
		if !strings.HasPrefix(ext, ".") {
			out[i] = "." + ext
		}
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
