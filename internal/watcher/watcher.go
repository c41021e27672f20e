package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/services"
)

type entry struct {
	size      int64
	modTime   time.Time
	firstSeen time.Time
	delivered bool
}

// Scanner polls the incoming directory and reports files once their size
// and modification time have held still for the stability window. A file
// is reported exactly once; partial downloads keep resetting their clock.
type Scanner struct {
	dir     string
	window  time.Duration
	allowed map[string]struct{}
	entries map[string]entry
	logger  *slog.Logger
}

// New builds a Scanner from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	allowed := make(map[string]struct{}, len(cfg.Ingest.AllowedExtensions))
	for _, ext := range cfg.Ingest.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Scanner{
		dir:     cfg.Paths.IncomingDir,
		window:  cfg.StableWindow(),
		allowed: allowed,
		entries: make(map[string]entry),
		logger:  logging.NewComponentLogger(logger, "watcher"),
	}
}

// Scan walks the incoming directory once and returns the files that became
// stable as of now, sorted for deterministic processing order. Scan is not
// safe for concurrent use; poll it from a single goroutine.
func (s *Scanner) Scan(now time.Time) ([]string, error) {
	current := make(map[string]struct{})
	var ready []string

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := s.allowed[ext]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// File vanished mid-walk: the next scan sorts it out.
			return nil
		}
		current[path] = struct{}{}

		tracked, known := s.entries[path]
		if !known || tracked.size != info.Size() || !tracked.modTime.Equal(info.ModTime()) {
			s.entries[path] = entry{
				size:      info.Size(),
				modTime:   info.ModTime(),
				firstSeen: now,
			}
			return nil
		}
		if tracked.delivered {
			return nil
		}
		if now.Sub(tracked.firstSeen) >= s.window {
			tracked.delivered = true
			s.entries[path] = tracked
			ready = append(ready, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "watcher", "scan", "walk incoming directory", err)
	}

	for path := range s.entries {
		if _, ok := current[path]; !ok {
			delete(s.entries, path)
		}
	}

	sort.Strings(ready)
	return ready, nil
}

// Watch polls at the configured interval and invokes handle with each
// batch of newly stable files until the context is canceled. Files that
// stabilize during the same poll are delivered together so callers can
// process them as one run.
func (s *Scanner) Watch(ctx context.Context, interval time.Duration, handle func(context.Context, []string)) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			files, err := s.Scan(time.Now())
			if err != nil {
				s.logger.Warn("incoming scan failed", logging.Error(err))
				continue
			}
			if len(files) > 0 {
				handle(ctx, files)
			}
		}
	}
}
