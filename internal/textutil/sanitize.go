package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// reservedWindowsNames are base names Windows refuses regardless of extension.
var reservedWindowsNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Reserved Windows device names get an underscore
// suffix. The result is trimmed of leading/trailing whitespace and dots.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.Trim(fileNameReplacer.Replace(name), " .")
	if _, reserved := reservedWindowsNames[strings.ToUpper(name)]; reserved {
		name += "_"
	}
	return name
}

// NormalizeNFC returns s in Unicode NFC composed form.
func NormalizeNFC(s string) string {
	return norm.NFC.String(s)
}

var transliterator = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Transliterate strips combining marks (é → e, ñ → n) and drops any runes
// that remain outside the printable ASCII range. Returns "" when nothing
// transliterable survives.
func Transliterate(s string) string {
	out, _, err := transform.String(transliterator, s)
	if err != nil {
		out = s
	}
	var b strings.Builder
	for _, r := range out {
		if r < 0x20 || r > 0x7e {
			continue
		}
		b.WriteRune(r)
	}
	return Collapse(b.String())
}

// DedupePhrases removes contiguous repeated word runs from a title, e.g.
// "Chang Jin Hu Chang Jin Hu The Battle" → "Chang Jin Hu The Battle".
// Repeats of four words down to single words are collapsed.
func DedupePhrases(title string) string {
	words := strings.Fields(title)
	for k := 4; k >= 1; k-- {
		words = collapseRepeats(words, k)
	}
	return strings.Join(words, " ")
}

func collapseRepeats(words []string, k int) []string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		if i+2*k <= len(words) && equalRun(words[i:i+k], words[i+k:i+2*k]) {
			out = append(out, words[i:i+k]...)
			i += 2 * k
			for i+k <= len(words) && equalRun(words[i-k:i], words[i:i+k]) {
				i += k
			}
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}

func equalRun(a, b []string) bool {
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
