package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	yearTokenPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	tvMarkerPattern = regexp.MustCompile(`(?i)\bS\d{1,2}E\d{2,3}\b|\b\d{1,2}x\d{2,3}\b|\bCap(?:\.|itulo|ítulo)?\s*\d{2,4}\b|\bTemporada\b|\bSeason\b|\bE\d{2,3}\b`)

	episodeSxxEyyPattern = regexp.MustCompile(`(?i)\bS(\d{1,2})E(\d{2,3})\b`)
	episodeNxNNPattern   = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`)
	episodeCapPattern    = regexp.MustCompile(`(?i)\bCap(?:\.|itulo|ítulo)?\s*(\d{2,4})\b`)

	leadingNumeralPattern = regexp.MustCompile(`^\s*(\d{1,4})\s+(\p{L})`)

	imdbIDPattern = regexp.MustCompile(`(?i)\btt(\d{7,8})\b`)
)

// resolutionValues are digit runs that look like titles starting with a
// number but are really video resolutions.
var resolutionValues = map[int]struct{}{
	360: {}, 480: {}, 576: {}, 720: {}, 1080: {}, 2160: {}, 4320: {},
}

// FindYears returns the distinct 4-digit year tokens (1900-2099) found in s,
// ordered by first appearance.
func FindYears(s string) []int {
	matches := yearTokenPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(matches))
	years := make([]int, 0, len(matches))
	for _, m := range matches {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	return years
}

// HasTVMarkers reports whether s contains any season/episode marker
// (SxxEyy, NxNN, Cap.###, Temporada/Season words, bare E##).
func HasTVMarkers(s string) bool {
	return tvMarkerPattern.MatchString(s)
}

// ParseEpisodeMarkers extracts (season, episode) from SxxEyy, NxNN or
// Cap.### markers. Cap numbers of three or more digits split as SSEE
// (Cap.102 means S01E02). Returns ok=false when no marker is present.
func ParseEpisodeMarkers(s string) (season, episode int, ok bool) {
	if m := episodeSxxEyyPattern.FindStringSubmatch(s); m != nil {
		season, _ = strconv.Atoi(m[1])
		episode, _ = strconv.Atoi(m[2])
		return season, episode, true
	}
	if m := episodeNxNNPattern.FindStringSubmatch(s); m != nil {
		season, _ = strconv.Atoi(m[1])
		episode, _ = strconv.Atoi(m[2])
		return season, episode, true
	}
	if m := episodeCapPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n >= 100 {
			season, episode = n/100, n%100
		} else {
			season, episode = 1, n
		}
		if season < 1 {
			season = 1
		}
		if episode < 1 {
			episode = 1
		}
		return season, episode, true
	}
	return 0, 0, false
}

// IsLeadingNumeralTitle reports whether seg begins with a digit run
// immediately followed by an alphabetic token, where the digits are
// neither a resolution value nor a bare year. Distinguishes titles like
// "12 Monkeys" from junk like "1080 Rip".
func IsLeadingNumeralTitle(seg string) bool {
	m := leadingNumeralPattern.FindStringSubmatch(seg)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	if _, ok := resolutionValues[n]; ok {
		return false
	}
	if n >= 1900 && n <= 2099 {
		return false
	}
	return true
}

// StripTVMarkers removes season/episode markers and season words from s.
func StripTVMarkers(s string) string {
	return Collapse(tvMarkerPattern.ReplaceAllString(s, " "))
}

// StripYears removes 4-digit year tokens (1900-2099) from s.
func StripYears(s string) string {
	return Collapse(yearTokenPattern.ReplaceAllString(s, " "))
}

// MostlyNonLatin reports whether the fraction of alphabetic runes outside
// the Latin script meets or exceeds threshold. A threshold of 0 or less
// falls back to the default 0.6.
func MostlyNonLatin(s string, threshold float64) bool {
	if threshold <= 0 {
		threshold = 0.6
	}
	var total, latin int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	if total == 0 {
		return false
	}
	return float64(total-latin)/float64(total) >= threshold
}

// FindIMDbID returns the first IMDb title identifier (tt1234567) found in s.
func FindIMDbID(s string) string {
	m := imdbIDPattern.FindString(s)
	if m == "" {
		return ""
	}
	return strings.ToLower(m)
}

// HasAlphaRun reports whether s contains a run of at least n consecutive
// alphabetic runes.
func HasAlphaRun(s string, n int) bool {
	run := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			run++
			if run >= n {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}

// AlphaWordCount counts the words in s whose alphabetic length is at
// least minLen.
func AlphaWordCount(s string, minLen int) int {
	count := 0
	for _, word := range strings.Fields(s) {
		letters := 0
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= minLen {
			count++
		}
	}
	return count
}
