package textutil

import (
	"reflect"
	"testing"
)

func TestFindYears(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"single year", "The Matrix 1999", []int{1999}},
		{"multiple years ordered", "2010 remaster of 1984 classic", []int{2010, 1984}},
		{"duplicate years", "1999 1999 again", []int{1999}},
		{"out of range", "The 1800s and 2150", nil},
		{"embedded digits ignored", "x264 10800 17761", nil},
		{"no years", "Some Title", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindYears(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindYears(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasTVMarkers(t *testing.T) {
	positive := []string{
		"Show S01E02", "show 1x20", "Serie Cap.105", "Capitulo 1203",
		"Temporada 3", "Season 2", "Episode E05 pack",
	}
	for _, s := range positive {
		if !HasTVMarkers(s) {
			t.Errorf("HasTVMarkers(%q) = false, want true", s)
		}
	}
	negative := []string{"The Matrix 1999", "12 Monkeys", "1080p x264"}
	for _, s := range negative {
		if HasTVMarkers(s) {
			t.Errorf("HasTVMarkers(%q) = true, want false", s)
		}
	}
}

func TestParseEpisodeMarkers(t *testing.T) {
	tests := []struct {
		input   string
		season  int
		episode int
		ok      bool
	}{
		{"Show S02E05", 2, 5, true},
		{"show 3x12", 3, 12, true},
		{"Serie Cap.102", 1, 2, true},
		{"Serie Capitulo 1105", 11, 5, true},
		{"Serie Cap.07", 1, 7, true},
		{"A plain movie", 0, 0, false},
	}
	for _, tt := range tests {
		season, episode, ok := ParseEpisodeMarkers(tt.input)
		if ok != tt.ok || season != tt.season || episode != tt.episode {
			t.Errorf("ParseEpisodeMarkers(%q) = (%d,%d,%v), want (%d,%d,%v)",
				tt.input, season, episode, ok, tt.season, tt.episode, tt.ok)
		}
	}
}

func TestIsLeadingNumeralTitle(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"12 Monos", true},
		{"21 Gramos", true},
		{"3 Metros Sobre el Cielo", true},
		{"1080 Rip", false},
		{"720 pixels", false},
		{"1999 Retrospective", false},
		{"Monkeys 12", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsLeadingNumeralTitle(tt.input); got != tt.want {
			t.Errorf("IsLeadingNumeralTitle(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMostlyNonLatin(t *testing.T) {
	if MostlyNonLatin("The Matrix", 0.6) {
		t.Error("latin title reported as non-latin")
	}
	if !MostlyNonLatin("长津湖之水门桥", 0.6) {
		t.Error("CJK title not reported as non-latin")
	}
	if MostlyNonLatin("1080 720 2160", 0.6) {
		t.Error("digits-only input should not count as non-latin")
	}
	if MostlyNonLatin("水门 with mostly latin words around it", 0.6) {
		t.Error("minor CJK content should stay below threshold")
	}
}

func TestFindIMDbID(t *testing.T) {
	if got := FindIMDbID("Movie tt0133093 rip"); got != "tt0133093" {
		t.Errorf("FindIMDbID = %q, want tt0133093", got)
	}
	if got := FindIMDbID("no id here"); got != "" {
		t.Errorf("FindIMDbID = %q, want empty", got)
	}
}

func TestUploaderClause(t *testing.T) {
	start, end, handle, ok := UploaderClause("Movie by Group 1999")
	if !ok || handle != "Group" {
		t.Fatalf("UploaderClause = (%d,%d,%q,%v)", start, end, handle, ok)
	}
	if got := "Movie by Group 1999"[start:end]; got != "by Group" {
		t.Fatalf("clause span = %q, want %q", got, "by Group")
	}
	if _, _, _, ok := UploaderClause("No preposition here"); ok {
		t.Fatal("expected no clause")
	}
}

func TestLooksLikeUploaderHandle(t *testing.T) {
	yes := []string{"Group", "por_someone", "@TeamX", "wolfmax4k", "[GRP]"}
	for _, h := range yes {
		if !LooksLikeUploaderHandle(h) {
			t.Errorf("LooksLikeUploaderHandle(%q) = false, want true", h)
		}
	}
	no := []string{"Me", "us", "Edicion", "extended", "Director", ""}
	for _, h := range no {
		if LooksLikeUploaderHandle(h) {
			t.Errorf("LooksLikeUploaderHandle(%q) = true, want false", h)
		}
	}
}

func TestIsPersonLike(t *testing.T) {
	yes := []string{"Maria Garcia", "Pedro de Alcantara", "Amelie Poulain"}
	for _, s := range yes {
		if !IsPersonLike(s) {
			t.Errorf("IsPersonLike(%q) = false, want true", s)
		}
	}
	no := []string{"The Matrix", "El Laberinto", "Maria Garcia Chronicles", "Heat", ""}
	for _, s := range no {
		if IsPersonLike(s) {
			t.Errorf("IsPersonLike(%q) = true, want false", s)
		}
	}
}

func TestAlphaHelpers(t *testing.T) {
	if !HasAlphaRun("ab cde", 3) {
		t.Error("HasAlphaRun should find cde")
	}
	if HasAlphaRun("a1b2c3", 3) {
		t.Error("HasAlphaRun should not match interrupted runs")
	}
	if got := AlphaWordCount("The Matrix Reloaded x2", 3); got != 3 {
		t.Errorf("AlphaWordCount = %d, want 3", got)
	}
}
