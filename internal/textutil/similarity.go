package textutil

import (
	"regexp"
	"sort"
	"strings"
)

var scoreCleanPattern = regexp.MustCompile(`\b\d{4}\b|[^\p{L}\p{N}\s]`)

// CleanForScore lowers, strips 4-digit numbers and punctuation, and
// collapses whitespace so fuzzy scores compare bare title text.
func CleanForScore(s string) string {
	s = scoreCleanPattern.ReplaceAllString(s, " ")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TokenSetRatio computes a 0-100 similarity between a and b that is
// tolerant of word reordering and of one string carrying extra tokens.
// Both inputs are compared on their sorted unique token sets.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, diffA, diffB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(diffA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(diffB, " "))

	best := levenshteinRatio(base, combinedA)
	if r := levenshteinRatio(base, combinedB); r > best {
		best = r
	}
	if r := levenshteinRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?'\"()[]{}")
		if f == "" {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}

// levenshteinRatio returns 100 * (1 - distance/maxLen), rounded down.
func levenshteinRatio(a, b string) int {
	if a == b {
		return 100
	}
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	dist := prev[lb]
	longest := la
	if lb > longest {
		longest = lb
	}
	return (longest - dist) * 100 / longest
}
