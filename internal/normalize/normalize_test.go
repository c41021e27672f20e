package normalize_test

import (
	"testing"

	"curator/internal/normalize"
)

func TestCleanStripsReleaseNoiseAndUploaderTail(t *testing.T) {
	result := normalize.Clean("The.Matrix.1999.WEBRip1080p.x264-GRP by por_someone")
	if result.CleanedCore != "The Matrix" {
		t.Fatalf("unexpected core: %q", result.CleanedCore)
	}
}

func TestCleanKeepsLeadingNumeralTitle(t *testing.T) {
	result := normalize.Clean("12 Monos (1995) Dual Audio")
	if result.CleanedCore != "12 Monos" {
		t.Fatalf("unexpected core: %q", result.CleanedCore)
	}
}

func TestCleanCodecOnlyYieldsNothing(t *testing.T) {
	result := normalize.Clean("1080p.x264.AC3")
	if result.CleanedCore != "" {
		t.Fatalf("expected empty core, got %q", result.CleanedCore)
	}
	if len(result.SalvageFragments) != 0 {
		t.Fatalf("expected no fragments, got %v", result.SalvageFragments)
	}
}

func TestCleanPreservesTVMarkersDuringBoundarySplit(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		core string
	}{
		{"sxxeyy", "Breaking.Bad.S01E02.720p.WEB-DL", "Breaking Bad"},
		{"nxnn", "The.Wire.3x08.HDTV.x264", "The Wire"},
		{"cap", "La.Casa.De.Papel.Cap.102.HDTV", "La Casa De Papel"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := normalize.Clean(tc.raw)
			if result.CleanedCore != tc.core {
				t.Fatalf("unexpected core: %q", result.CleanedCore)
			}
		})
	}
}

func TestCleanUploaderTrimGuards(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		core string
	}{
		{"common word handle kept", "Stand by Me 1986", "Stand by Me"},
		{"group handle trimmed", "Movie by Group 1999", "Movie"},
		{"edition word handle kept", "Movie por Edicion 2004", "Movie por Edicion"},
		{"leading preposition kept", "Para Elisa (1999)", "Para Elisa"},
		{"year handle kept", "Movie by 1999", "Movie by"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := normalize.Clean(tc.raw)
			if result.CleanedCore != tc.core {
				t.Fatalf("Clean(%q) core = %q, want %q", tc.raw, result.CleanedCore, tc.core)
			}
		})
	}
}

func TestCleanBilingualInnerParenthesis(t *testing.T) {
	result := normalize.Clean("El Laberinto del Fauno (Pans Labyrinth) 2006 DVDRip")
	if result.CleanedCore != "El Laberinto del Fauno" {
		t.Fatalf("unexpected core: %q", result.CleanedCore)
	}
	found := false
	for _, frag := range result.SalvageFragments {
		if frag == "Pans Labyrinth" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bilingual alternate in fragments, got %v", result.SalvageFragments)
	}

	// Single-word parenthetical noise must not survive.
	result = normalize.Clean("Some Movie (FullHD) 2010")
	for _, frag := range result.SalvageFragments {
		if frag == "FullHD" {
			t.Fatalf("expected single-word parenthetical to be dropped, got %v", result.SalvageFragments)
		}
	}
}

func TestCleanDropsCreditLists(t *testing.T) {
	result := normalize.Clean("Great Film 2011 - starring Famous Person, Another Actor")
	if result.CleanedCore != "Great Film" {
		t.Fatalf("unexpected core: %q", result.CleanedCore)
	}
	if len(result.SalvageFragments) != 0 {
		t.Fatalf("expected credit fragment dropped, got %v", result.SalvageFragments)
	}
}

func TestCleanNearYearFragment(t *testing.T) {
	result := normalize.Clean("Nombre Original (1995) Otro Titulo Alternativo")
	if result.NearYear != "Otro Titulo Alternativo" {
		t.Fatalf("unexpected near-year fragment: %q", result.NearYear)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"The.Matrix.1999.WEBRip1080p.x264-GRP by por_someone",
		"12 Monos (1995) Dual Audio",
		"Breaking.Bad.S01E02.720p.WEB-DL",
		"El Laberinto del Fauno (Pans Labyrinth) 2006 DVDRip",
		"Great Film 2011 - starring Famous Person, Another Actor",
		"Stand by Me 1986",
		"Movie by Group 1999",
		"Para Elisa (1999)",
		"Movie by 1999",
	}
	for _, raw := range inputs {
		first := normalize.Clean(raw)
		second := normalize.Clean(first.CleanedCore)
		if second.CleanedCore != first.CleanedCore {
			t.Fatalf("Clean not idempotent for %q: %q -> %q", raw, first.CleanedCore, second.CleanedCore)
		}
	}
}

func TestCleanDeterministic(t *testing.T) {
	raw := "Some.Show.2x05.HDTV.XviD (Version Extendida) por uploader"
	first := normalize.Clean(raw)
	for i := 0; i < 5; i++ {
		again := normalize.Clean(raw)
		if again.CleanedCore != first.CleanedCore {
			t.Fatalf("core varied between runs: %q vs %q", again.CleanedCore, first.CleanedCore)
		}
		if len(again.SalvageFragments) != len(first.SalvageFragments) {
			t.Fatalf("fragments varied between runs: %v vs %v", again.SalvageFragments, first.SalvageFragments)
		}
		for j := range again.SalvageFragments {
			if again.SalvageFragments[j] != first.SalvageFragments[j] {
				t.Fatalf("fragment order varied: %v vs %v", again.SalvageFragments, first.SalvageFragments)
			}
		}
	}
}

func TestHintsFor(t *testing.T) {
	h := normalize.HintsFor("Breaking.Bad.S01E02.1999.720p")
	if !h.TVMarkers || !h.HasEpisode {
		t.Fatalf("expected TV markers, got %+v", h)
	}
	if h.Season != 1 || h.Episode != 2 {
		t.Fatalf("unexpected season/episode: %d/%d", h.Season, h.Episode)
	}
	if h.NearestYear() != 1999 {
		t.Fatalf("unexpected nearest year: %d", h.NearestYear())
	}
	if !h.AllowsYear(2000) || h.AllowsYear(2010) {
		t.Fatal("year tolerance misbehaved")
	}

	h = normalize.HintsFor("plain movie name")
	if h.TVMarkers || h.HasEpisode || len(h.Years) != 0 {
		t.Fatalf("expected no structure, got %+v", h)
	}
	if !h.AllowsYear(1984) {
		t.Fatal("expected all years allowed when none detected")
	}
}
