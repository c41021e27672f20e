package organizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"curator/internal/classify"
	"curator/internal/textutil"
)

// Conservative NTFS limits so library paths stay usable from Windows
// clients without long-path prefixes.
const (
	windowsSafeMaxPath = 240
	maxDirComponent    = 80
	maxFileName        = 120
)

// Destination computes the library target for a classification without
// touching the filesystem.
func (o *Organizer) Destination(sourcePath string, result classify.Result) string {
	ext := strings.ToLower(filepath.Ext(sourcePath))

	switch result.Kind {
	case classify.KindMovie, classify.KindMovieKids:
		root := textutil.Ternary(result.Kind == classify.KindMovieKids, o.cfg.MoviesKidsPath(), o.cfg.MoviesPath())
		folder := displayTitle(result.Title)
		if result.Year > 0 {
			folder = fmt.Sprintf("%s (%d)", folder, result.Year)
		}
		folder = textutil.SanitizeFileName(folder)
		return shortenForWindows(filepath.Join(root, folder, folder+ext))

	case classify.KindTV, classify.KindTVKids:
		root := textutil.Ternary(result.Kind == classify.KindTVKids, o.cfg.TVKidsPath(), o.cfg.TVPath())
		series := textutil.SanitizeFileName(displayTitle(result.Title))
		season, episode := 1, 1
		if result.HasEpisode {
			season = result.Season
			episode = result.Episode
		}
		file := textutil.SanitizeFileName(fmt.Sprintf("%s - S%02dE%02d", series, season, episode)) + ext
		return shortenForWindows(filepath.Join(root, series, fmt.Sprintf("Season %02d", season), file))

	default:
		stem := filepath.Base(sourcePath)
		stem = textutil.SanitizeFileName(strings.TrimSuffix(stem, filepath.Ext(stem)))
		if stem == "" {
			stem = "unnamed"
		}
		return shortenForWindows(filepath.Join(o.cfg.Paths.UnsortedDir, stem, stem+ext))
	}
}

func displayTitle(title string) string {
	title = textutil.DedupePhrases(strings.TrimSpace(title))
	if title == "" {
		return "Untitled"
	}
	return title
}

// shortenForWindows truncates the leaf directory and filename so the full
// path stays inside the safe limit. The extension always survives.
func shortenForWindows(path string) string {
	dir, file := filepath.Split(path)
	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	leaf := truncate(filepath.Base(dir), maxDirComponent)
	file = truncateFileName(file, maxFileName)

	candidate := filepath.Join(parent, leaf, file)
	if len(candidate) < windowsSafeMaxPath {
		return candidate
	}

	ext := filepath.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	excess := len(candidate) - windowsSafeMaxPath + 5
	keep := len(stem) - excess
	if keep < 8 {
		keep = 8
	}
	if keep < len(stem) {
		stem = stem[:keep]
	}
	return filepath.Join(parent, leaf, stem+ext)
}

func truncate(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	return name[:maxLen]
}

func truncateFileName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	keep := maxLen - len(ext)
	if keep < 8 {
		keep = 8
	}
	if keep > len(stem) {
		keep = len(stem)
	}
	return stem[:keep] + ext
}
