package organizer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/classify"
	"curator/internal/config"
	"curator/internal/organizer"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IncomingDir = filepath.Join(root, "incoming")
	cfg.Paths.LibraryDir = filepath.Join(root, "library")
	cfg.Paths.MoviesDir = "Movies"
	cfg.Paths.TVDir = "TV"
	cfg.Paths.MoviesKidsDir = "Movies_Kids"
	cfg.Paths.TVKidsDir = "TV_Kids"
	cfg.Paths.UnsortedDir = filepath.Join(root, "library", "unsorted")
	cfg.Ingest.SidecarExtensions = []string{".srt", ".nfo"}
	for _, dir := range []string{cfg.Paths.IncomingDir, cfg.Paths.LibraryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return &cfg
}

func writeSource(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.IncomingDir, name)
	if err := os.WriteFile(path, []byte("video payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlaceMovie(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)
	src := writeSource(t, cfg, "the.matrix.1999.mkv")

	result := classify.Result{Kind: classify.KindMovie, Title: "The Matrix", Year: 1999}
	final, err := org.Place(context.Background(), src, result)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	want := filepath.Join(cfg.MoviesPath(), "The Matrix (1999)", "The Matrix (1999).mkv")
	if final != want {
		t.Fatalf("unexpected final path:\n got %s\nwant %s", final, want)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final file missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected source removed")
	}
}

func TestPlaceTVEpisode(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)
	src := writeSource(t, cfg, "the.wire.3x08.mkv")

	result := classify.Result{
		Kind:       classify.KindTV,
		Title:      "The Wire",
		Year:       2002,
		Season:     3,
		Episode:    8,
		HasEpisode: true,
	}
	final, err := org.Place(context.Background(), src, result)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	want := filepath.Join(cfg.TVPath(), "The Wire", "Season 03", "The Wire - S03E08.mkv")
	if final != want {
		t.Fatalf("unexpected final path:\n got %s\nwant %s", final, want)
	}
}

func TestPlaceKidsMovie(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)
	src := writeSource(t, cfg, "coco.mkv")

	result := classify.Result{Kind: classify.KindMovieKids, Title: "Coco", Year: 2017}
	final, err := org.Place(context.Background(), src, result)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if !strings.HasPrefix(final, cfg.MoviesKidsPath()) {
		t.Fatalf("expected kids section, got %s", final)
	}
}

func TestPlaceUnresolvedSink(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)
	src := writeSource(t, cfg, "mystery.file.mkv")

	final, err := org.Place(context.Background(), src, classify.Result{Kind: classify.KindUnresolved})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	want := filepath.Join(cfg.Paths.UnsortedDir, "mystery.file", "mystery.file.mkv")
	if final != want {
		t.Fatalf("unexpected final path:\n got %s\nwant %s", final, want)
	}
}

func TestPlaceConflictSuffix(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)

	result := classify.Result{Kind: classify.KindMovie, Title: "Heat", Year: 1995}
	existing := filepath.Join(cfg.MoviesPath(), "Heat (1995)", "Heat (1995).mkv")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := writeSource(t, cfg, "heat.1995.mkv")
	final, err := org.Place(context.Background(), src, result)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	want := filepath.Join(cfg.MoviesPath(), "Heat (1995)", "Heat (1995)_1.mkv")
	if final != want {
		t.Fatalf("unexpected conflict path:\n got %s\nwant %s", final, want)
	}
	got, err := os.ReadFile(existing)
	if err != nil || string(got) != "already here" {
		t.Fatalf("existing file disturbed: %q %v", got, err)
	}
}

func TestPlaceMovesSidecars(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)
	src := writeSource(t, cfg, "amelie.2001.mkv")
	sidecar := filepath.Join(cfg.Paths.IncomingDir, "amelie.2001.srt")
	if err := os.WriteFile(sidecar, []byte("1\n00:00:01 --> 00:00:02\nBonjour\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := classify.Result{Kind: classify.KindMovie, Title: "Amelie", Year: 2001}
	final, err := org.Place(context.Background(), src, result)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	wantSidecar := strings.TrimSuffix(final, ".mkv") + ".srt"
	if _, err := os.Stat(wantSidecar); err != nil {
		t.Fatalf("sidecar missing at %s: %v", wantSidecar, err)
	}
	if _, err := os.Stat(sidecar); !os.IsNotExist(err) {
		t.Fatal("expected sidecar source removed")
	}
}

func TestPlaceRemovesEmptiedSourceSubdir(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)

	subdir := filepath.Join(cfg.Paths.IncomingDir, "release", "nested")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(subdir, "heat.1995.mkv")
	if err := os.WriteFile(src, []byte("video payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := classify.Result{Kind: classify.KindMovie, Title: "Heat", Year: 1995}
	if _, err := org.Place(context.Background(), src, result); err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.IncomingDir, "release")); !os.IsNotExist(err) {
		t.Fatal("expected emptied source subdirectories removed")
	}
	if _, err := os.Stat(cfg.Paths.IncomingDir); err != nil {
		t.Fatalf("incoming root must survive: %v", err)
	}
}

func TestPlaceKeepsSourceDirWithRemainingFiles(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)

	subdir := filepath.Join(cfg.Paths.IncomingDir, "release")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(subdir, "heat.1995.mkv")
	for _, name := range []string{"heat.1995.mkv", "other.mkv"} {
		if err := os.WriteFile(filepath.Join(subdir, name), []byte("video payload"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result := classify.Result{Kind: classify.KindMovie, Title: "Heat", Year: 1995}
	if _, err := org.Place(context.Background(), src, result); err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(subdir, "other.mkv")); err != nil {
		t.Fatalf("sibling file must survive: %v", err)
	}
}

func TestDestinationShortensLongTitles(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)

	long := "The Incredibly Long And Overly Descriptive Title Of A Film That Never Ends " +
		"Featuring Every Character Ever Written Plus Several More Invented For The Occasion " +
		"And An Epilogue Nobody Asked For"
	result := classify.Result{Kind: classify.KindMovie, Title: long, Year: 2020}
	dest := org.Destination(filepath.Join(cfg.Paths.IncomingDir, "long.mkv"), result)

	if len(dest) >= 240 {
		t.Fatalf("path too long (%d): %s", len(dest), dest)
	}
	if len(filepath.Base(filepath.Dir(dest))) > 80 {
		t.Fatalf("leaf directory too long: %s", filepath.Base(filepath.Dir(dest)))
	}
	if len(filepath.Base(dest)) > 120 {
		t.Fatalf("file name too long: %s", filepath.Base(dest))
	}
	if !strings.HasSuffix(dest, ".mkv") {
		t.Fatalf("extension lost: %s", dest)
	}
}

func TestDestinationSanitizesReservedCharacters(t *testing.T) {
	cfg := testConfig(t)
	org := organizer.New(cfg, nil)

	result := classify.Result{Kind: classify.KindMovie, Title: "Face/Off: Special?", Year: 1997}
	dest := org.Destination(filepath.Join(cfg.Paths.IncomingDir, "faceoff.mkv"), result)

	rel, err := filepath.Rel(cfg.MoviesPath(), dest)
	if err != nil {
		t.Fatal(err)
	}
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		if strings.ContainsAny(segment, "/\\:?*\"<>|") {
			t.Fatalf("unsafe characters in %q", segment)
		}
	}
}
