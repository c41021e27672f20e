package textutil

import (
	"regexp"
	"strings"
)

// Token classifiers for the junk classes that appear in release names.
// These are classes of tokens, never per-title blacklists.
var (
	releaseTagPattern = regexp.MustCompile(`(?i)\b(` +
		`blu[- ]?ray|br[- ]?rip|bdrip|web[- ]?dl|web[- ]?rip|hdrip|dvdrip|dvd|remux|microhd|screener|cam|telesync|` +
		`hdtv|pdtv|sdtv|tvrip|hdcam|` +
		`x26[45]|xvid|divx|hevc|h\.?26[45]|av1|` +
		`e?ac-?3|ddp|dd\+|dts(?:-?hd)?(?:\s?ma)?|truehd|atmos|aac|mp3|flac|opus|l?pcm|` +
		`2160p|1080p|720p|576p|480p|360p|[48]k|10-?bit|8-?bit|hdr10(?:\+|plus)?|hdr|hlg|sdr|dovi|dolby\s*vision|` +
		`proper|repack|limited|extended|unrated|remastered|theatrical|imax|director'?s\s*cut|` +
		`\d{3,4}p|[12]\d{2,3}x\d{3,4}` +
		`)\b`)

	languageTagPattern = regexp.MustCompile(`(?i)(?:\b(?:` +
		`spanish|english|french|german|italian|portuguese|portugues|japanese|chinese|korean|catalan|` +
		`castellano|español|espanol|esp|eng|ita|fra|deu|lat(?:am|ino)?|` +
		`vose|vos|vo|subs?|subtitulos?|subesp|subeng|` +
		`dual|multi|bilingüe|bilingue|dualaudio|multiaudio` +
		`)\b|esp-?eng|es-?en|vo-?lat(?:ino)?|vo-?sub|vo-?esp|esp-?ing|spa-?eng)`)

	domainPattern = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?(?:[a-z0-9-]+\.)+(?:com|net|org|info|ru|to|co|es|it|fr)\b`)

	uploaderClausePattern = regexp.MustCompile(`(?i)\b(?:by|por|per|para)\s+(\S+)`)

	uploaderHandlePattern = regexp.MustCompile(`^@?[\w.\-]{3,16}$`)

	creditHeadPattern = regexp.MustCompile(`(?is)^\s*(?:di|de|by)\s+[^\-:(\[]+?\s+(?:con|with)\s+[^\-:(\[]+?(?:$|[-–;:(\[])`)

	personNamePattern = regexp.MustCompile(`[A-ZÁÉÍÓÚÜÑ][a-záéíóúüñ]+(?:\s+(?:de|del|la|da|dos|do|van|von|di|du))?\s+[A-ZÁÉÍÓÚÜÑ][a-záéíóúüñ]+`)

	personListPattern = regexp.MustCompile(`(?:` + personNamePattern.String() + `)(?:\s*(?:,|\by\b|\band\b|&)\s*(?:` + personNamePattern.String() + `)){1,5}`)

	castKeywordPattern = regexp.MustCompile(`(?i)\b(?:starring|protagonizada|reparto|directed\s+by|dirigida\s+por)\b`)

	collapsePattern = regexp.MustCompile(`\s{2,}`)
)

// StripReleaseTags removes codec/resolution/source/quality tokens.
func StripReleaseTags(s string) string {
	return Collapse(releaseTagPattern.ReplaceAllString(s, " "))
}

// StripLanguageTags removes language and dual/multi-audio markers.
func StripLanguageTags(s string) string {
	return Collapse(languageTagPattern.ReplaceAllString(s, " "))
}

// StripDomains removes hosting/tracker domain tokens, with or without scheme.
func StripDomains(s string) string {
	return Collapse(domainPattern.ReplaceAllString(s, " "))
}

// commonHandleWords are edition words that follow "by"/"por" inside real
// titles and must never read as uploader handles.
var commonHandleWords = map[string]struct{}{
	"extended": {}, "uncut": {}, "version": {}, "montaje": {},
	"director": {}, "cut": {}, "remaster": {}, "remastered": {},
	"edition": {}, "edicion": {}, "edición": {},
}

// HasReleaseTokens reports whether s still carries release, language, or
// uploader-preposition tokens. Used to penalize noisy catalog titles.
func HasReleaseTokens(s string) bool {
	return releaseTagPattern.MatchString(s) ||
		languageTagPattern.MatchString(s) ||
		domainPattern.MatchString(s) ||
		uploaderClausePattern.MatchString(s)
}

// HasDomain reports whether s contains a hosting/tracker domain token.
func HasDomain(s string) bool {
	return domainPattern.MatchString(s)
}

// IsCreditList reports whether s reads as a credit or cast list: a leading
// "de X con Y" credits head, a run of comma/conjunction-separated proper
// names, or an explicit cast keyword.
func IsCreditList(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if castKeywordPattern.MatchString(trimmed) {
		return true
	}
	if creditHeadPattern.MatchString(trimmed) {
		return true
	}
	if loc := personListPattern.FindStringIndex(trimmed); loc != nil {
		// Only a credit list when the names dominate the fragment.
		covered := loc[1] - loc[0]
		return covered*2 >= len(trimmed)
	}
	return false
}

// leadingArticles disqualify a phrase from reading as a person name.
var leadingArticles = map[string]struct{}{
	"the": {}, "el": {}, "la": {}, "los": {}, "las": {},
	"un": {}, "una": {}, "le": {}, "il": {},
}

// IsPersonLike reports whether s looks like a bare "First Last" person name.
func IsPersonLike(s string) bool {
	trimmed := strings.TrimSpace(s)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 || len(fields) > 3 {
		return false
	}
	if _, article := leadingArticles[strings.ToLower(fields[0])]; article {
		return false
	}
	return personNamePattern.MatchString(trimmed) && !hasAlphaRunOutsideMatch(trimmed)
}

// hasAlphaRunOutsideMatch reports whether trimmed has alphabetic content
// outside the person-name match, which disqualifies it as a bare name.
func hasAlphaRunOutsideMatch(trimmed string) bool {
	loc := personNamePattern.FindStringIndex(trimmed)
	if loc == nil {
		return false
	}
	rest := trimmed[:loc[0]] + trimmed[loc[1]:]
	return HasAlphaRun(rest, 3)
}

// UploaderClause locates the first uploader clause ("by someone",
// "por grupo") in s and returns its span plus the handle token after the
// preposition.
func UploaderClause(s string) (start, end int, handle string, ok bool) {
	m := uploaderClausePattern.FindStringSubmatchIndex(s)
	if m == nil {
		return 0, 0, "", false
	}
	return m[0], m[1], s[m[2]:m[3]], true
}

// LooksLikeUploaderHandle reports whether a clause handle reads as a
// release-group tag: a short word-shaped token that is not a common
// edition word. Two-letter words like "Me" never qualify.
func LooksLikeUploaderHandle(handle string) bool {
	h := strings.ToLower(strings.Trim(handle, " []-–—"))
	if h == "" {
		return false
	}
	if _, common := commonHandleWords[h]; common {
		return false
	}
	return uploaderHandlePattern.MatchString(h)
}

// Collapse squeezes repeated whitespace and trims surrounding separators.
func Collapse(s string) string {
	s = collapsePattern.ReplaceAllString(s, " ")
	return strings.Trim(s, " -.,_")
}
