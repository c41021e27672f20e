package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateKids(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validatePlex(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.IncomingDir) == "" {
		return errors.New("paths.incoming_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	for key, value := range map[string]string{
		"paths.movies_dir":      c.Paths.MoviesDir,
		"paths.tv_dir":          c.Paths.TVDir,
		"paths.movies_kids_dir": c.Paths.MoviesKidsDir,
		"paths.tv_kids_dir":     c.Paths.TVKidsDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if c.Paths.IncomingDir == c.Paths.LibraryDir {
		return errors.New("paths.incoming_dir and paths.library_dir must differ")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/curator/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'curator config init')", defaultPath)
	}
	if c.TMDB.FuzzyThreshold < 0 || c.TMDB.FuzzyThreshold > 100 {
		return errors.New("tmdb.fuzzy_threshold must be between 0 and 100")
	}
	if err := ensurePositiveMap(map[string]int{
		"tmdb.item_call_limit": c.TMDB.ItemCallLimit,
		"tmdb.run_call_limit":  c.TMDB.RunCallLimit,
		"tmdb.timeout_seconds": c.TMDB.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.TMDB.RunCallLimit < c.TMDB.ItemCallLimit {
		return errors.New("tmdb.run_call_limit must be at least tmdb.item_call_limit")
	}
	return nil
}

func (c *Config) validateKids() error {
	if c.Kids.MaxAge < 0 || c.Kids.MaxAge > 18 {
		return errors.New("kids.max_age must be between 0 and 18")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if len(c.Ingest.AllowedExtensions) == 0 {
		return errors.New("ingest.allowed_extensions must include at least one extension")
	}
	return ensurePositiveMap(map[string]int{
		"ingest.stable_seconds":        c.Ingest.StableSeconds,
		"ingest.poll_interval_seconds": c.Ingest.PollIntervalSeconds,
		"ingest.workers":               c.Ingest.Workers,
	})
}

func (c *Config) validatePlex() error {
	if !c.Plex.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Plex.URL) == "" {
		return errors.New("plex.url must be set when plex.enabled is true")
	}
	if strings.TrimSpace(c.Plex.Token) == "" {
		return errors.New("plex.token must be set when plex.enabled is true (or set PLEX_TOKEN)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
