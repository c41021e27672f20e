package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"curator/internal/textutil"
)

// Result is the output of one Clean pass.
type Result struct {
	// CleanedCore is the primary title candidate with years, episode
	// markers, and junk tokens removed. Empty when nothing survived.
	CleanedCore string
	// SalvageFragments are the remaining kept fragments in insertion
	// order, deduplicated case-insensitively.
	SalvageFragments []string
	// NearYear is the fragment that immediately followed a bare year
	// token, or empty when no such fragment exists.
	NearYear string
}

var (
	separatorReplacer = strings.NewReplacer(".", " ", "_", " ")

	bracketPattern = regexp.MustCompile(`\[[^\]]*\]|\{[^}]*\}`)

	// Compact tokens whose interior letter/digit junctions must survive
	// boundary splitting: episode markers, years, and fused release tags.
	protectedJunctionPattern = regexp.MustCompile(`(?i)` +
		`s\d{1,2}e\d{2,3}|\b\d{1,2}x\d{2,3}|e\d{2,3}|cap\.?\s*\d{2,4}|` +
		`(?:19|20)\d{2}|` +
		`\d{3,4}p|[48]k|[xh]\.?26[45]|mp3|e?ac-?3|ddp[\d.]*|dts|av1|hdr10(?:\+|plus)?|\d{1,2}-?bit`)

	pureYearPattern = regexp.MustCompile(`^(19|20)\d{2}$`)
)

// Clean runs the full normalization pipeline over a raw filename stem.
func Clean(raw string) Result {
	s := textutil.NormalizeNFC(raw)
	s = separatorReplacer.Replace(s)
	s = splitBoundaries(s)
	s = stripJunk(s)
	s = trimUploaderTail(s)

	fragments := pruneClauses(s)

	var core string
	var salvage []string
	nearYear := ""
	seen := make(map[string]struct{}, len(fragments))
	sawYear := false
	for _, frag := range fragments {
		if frag.year {
			sawYear = true
			continue
		}
		text := scrubFragment(frag.text)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if sawYear && nearYear == "" && core != "" {
			nearYear = text
		}
		if core == "" {
			core = text
			continue
		}
		salvage = append(salvage, text)
	}

	return Result{
		CleanedCore:      textutil.DedupePhrases(core),
		SalvageFragments: salvage,
		NearYear:         nearYear,
	}
}

// splitBoundaries inserts a space at every letter/digit junction outside
// protected token spans, so fused names like "WEBRip1080p" or "Matrix1999"
// separate while "S01E02", "x264", and bare years stay whole.
func splitBoundaries(s string) string {
	spans := protectedJunctionPattern.FindAllStringIndex(s, -1)
	interior := func(pos int) bool {
		for _, span := range spans {
			if pos > span[0] && pos < span[1] {
				return true
			}
		}
		return false
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	prev := rune(0)
	for i, r := range s {
		if junction(prev, r) && !interior(i) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func junction(prev, cur rune) bool {
	if prev == 0 {
		return false
	}
	return (unicode.IsLetter(prev) && unicode.IsDigit(cur)) ||
		(unicode.IsDigit(prev) && unicode.IsLetter(cur))
}

func stripJunk(s string) string {
	s = bracketPattern.ReplaceAllString(s, " ")
	s = textutil.StripDomains(s)
	s = textutil.StripReleaseTags(s)
	s = textutil.StripLanguageTags(s)
	return textutil.Collapse(s)
}

// trimUploaderTail removes uploader clauses ("by GRP", "por uploader").
// A clause survives when it opens the string, carries a year or episode
// marker, or its handle does not read as a release-group tag, so phrases
// like "Stand by Me" keep their text. The decision depends only on the
// clause itself, never on tokens a later stage may strip.
func trimUploaderTail(s string) string {
	for {
		start, end, handle, ok := textutil.UploaderClause(s)
		if !ok || start == 0 {
			return s
		}
		clause := s[start:end]
		if len(textutil.FindYears(clause)) > 0 || textutil.HasTVMarkers(clause) {
			return s
		}
		if !textutil.LooksLikeUploaderHandle(handle) {
			return s
		}
		s = textutil.Collapse(s[:start] + " " + s[end:])
	}
}

type clause struct {
	text  string
	inner bool
	year  bool
}

// pruneClauses splits on parenthesis/hyphen/colon/semicolon/slash
// boundaries and keeps only fragments that could plausibly be titles.
// Bare years are kept as ordering markers so near-year adjacency can be
// recovered; inner-parenthesis fragments must carry at least two
// alphabetic words of length three or more (the bilingual rule).
func pruneClauses(s string) []clause {
	raw := splitClauses(s)
	kept := make([]clause, 0, len(raw))
	for _, frag := range raw {
		text := textutil.Collapse(frag.text)
		if text == "" {
			continue
		}
		if pureYearPattern.MatchString(text) {
			kept = append(kept, clause{text: text, inner: frag.inner, year: true})
			continue
		}
		if frag.inner {
			if textutil.AlphaWordCount(textutil.StripYears(text), 3) >= 2 && !textutil.IsCreditList(text) {
				kept = append(kept, clause{text: text, inner: true})
			}
			continue
		}
		if textutil.IsCreditList(text) {
			continue
		}
		if textutil.HasAlphaRun(text, 3) || textutil.IsLeadingNumeralTitle(text) {
			kept = append(kept, clause{text: text})
		}
	}
	return kept
}

func splitClauses(s string) []clause {
	var out []clause
	var b strings.Builder
	depth := 0
	flush := func(inner bool) {
		if b.Len() > 0 {
			out = append(out, clause{text: b.String(), inner: inner})
			b.Reset()
		}
	}
	for _, r := range s {
		switch r {
		case '(':
			flush(depth > 0)
			depth++
		case ')':
			flush(depth > 0)
			if depth > 0 {
				depth--
			}
		case '-', '–', '—', ':', ';', '/':
			flush(depth > 0)
		default:
			b.WriteRune(r)
		}
	}
	flush(depth > 0)
	return out
}

// scrubFragment removes residual structural tokens that must not appear
// in query text: years and episode markers. Uploader clauses that survived
// the guarded trim stay put.
func scrubFragment(s string) string {
	s = textutil.StripTVMarkers(s)
	s = textutil.StripYears(s)
	return textutil.NormalizeNFC(textutil.Collapse(s))
}
