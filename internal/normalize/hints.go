package normalize

import "curator/internal/textutil"

// Hints holds the structural evidence derived once from a raw name.
// Downstream stages read hints instead of re-deriving their own regex
// passes, so guard decisions cannot drift mid-pipeline.
type Hints struct {
	Years          []int
	TVMarkers      bool
	Season         int
	Episode        int
	HasEpisode     bool
	LeadingNumeral bool
	MostlyNonLatin bool
	IMDbID         string
}

// HintsFor computes structural hints from a raw filename stem.
func HintsFor(raw string) Hints {
	h := Hints{
		Years:          textutil.FindYears(raw),
		TVMarkers:      textutil.HasTVMarkers(raw),
		LeadingNumeral: textutil.IsLeadingNumeralTitle(raw),
		MostlyNonLatin: textutil.MostlyNonLatin(raw, 0),
		IMDbID:         textutil.FindIMDbID(raw),
	}
	if season, episode, ok := textutil.ParseEpisodeMarkers(raw); ok {
		h.Season = season
		h.Episode = episode
		h.HasEpisode = true
	}
	return h
}

// NearestYear returns the first detected year, or 0 when none was found.
func (h Hints) NearestYear() int {
	if len(h.Years) == 0 {
		return 0
	}
	return h.Years[0]
}

// AllowsYear reports whether year falls within one year of any
// filename-derived year. When no years were detected every year is allowed.
func (h Hints) AllowsYear(year int) bool {
	if len(h.Years) == 0 {
		return true
	}
	for _, y := range h.Years {
		if year >= y-1 && year <= y+1 {
			return true
		}
	}
	return false
}
