package querygen

import (
	"sort"
	"strconv"
	"strings"

	"curator/internal/normalize"
	"curator/internal/textutil"
)

// Bucket names the priority class a candidate belongs to.
type Bucket string

const (
	BucketCoreWithYear Bucket = "core_with_year"
	BucketCoreNoYear   Bucket = "core_no_year"
	BucketNearYear     Bucket = "near_year"
	BucketMultiWord    Bucket = "multi_word"
	BucketRomanized    Bucket = "romanized"
)

// MainCap is the maximum number of candidates kept for the main pass.
const MainCap = 6

// RescueGenerateCap and RescueExecuteCap bound the rescue pass: up to five
// candidates are generated but only the first three are queried.
const (
	RescueGenerateCap = 5
	RescueExecuteCap  = 3
)

// Candidate is one catalog query: text plus an optional year filter,
// tagged with its bucket and priority. Lower priority numbers run first.
type Candidate struct {
	Text     string
	Year     int
	Bucket   Bucket
	Priority int
}

type builder struct {
	out   []Candidate
	seen  map[string]struct{}
	limit int
}

func newBuilder(limit int) *builder {
	return &builder{seen: make(map[string]struct{}, limit), limit: limit}
}

// add appends a candidate unless its (text, year) pair was already taken
// or the cap is reached. Dedup is case-insensitive on text.
func (b *builder) add(text string, year int, bucket Bucket) {
	text = textutil.Collapse(text)
	if text == "" || len(b.out) >= b.limit {
		return
	}
	key := strings.ToLower(text) + "|" + strconv.Itoa(year)
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.out = append(b.out, Candidate{
		Text:     text,
		Year:     year,
		Bucket:   bucket,
		Priority: len(b.out) + 1,
	})
}

// Build produces the main-pass candidate list in priority order:
// core with year, core alone, the near-year fragment, then the longest
// multi-word salvage fragment. The list is deduplicated and capped.
func Build(res normalize.Result, hints normalize.Hints, yearHint int) []Candidate {
	year := hints.NearestYear()
	if year == 0 {
		year = yearHint
	}

	b := newBuilder(MainCap)
	if res.CleanedCore != "" {
		if year != 0 {
			b.add(res.CleanedCore, year, BucketCoreWithYear)
		}
		b.add(res.CleanedCore, 0, BucketCoreNoYear)
	}
	if res.NearYear != "" && textutil.AlphaWordCount(res.NearYear, 1) >= 2 {
		b.add(res.NearYear, year, BucketNearYear)
	}
	if frag := longestMultiWord(res.SalvageFragments); frag != "" {
		b.add(frag, 0, BucketMultiWord)
	}
	return b.out
}

// BuildRescue produces the second-pass candidate list: the multi-word
// salvage fragments longest first, then the near-year fragment, then a
// romanized core when the raw name is mostly non-Latin, and finally the
// core replays. Only the first RescueExecuteCap entries are executed, so
// the order decides which alternates get a query at all.
func BuildRescue(res normalize.Result, hints normalize.Hints, yearHint int) []Candidate {
	year := hints.NearestYear()
	if year == 0 {
		year = yearHint
	}

	b := newBuilder(RescueGenerateCap)
	frags := append([]string(nil), res.SalvageFragments...)
	sort.SliceStable(frags, func(i, j int) bool { return len(frags[i]) > len(frags[j]) })
	for _, frag := range frags {
		if textutil.AlphaWordCount(frag, 1) >= 2 {
			b.add(frag, 0, BucketMultiWord)
		}
	}
	if res.NearYear != "" && textutil.AlphaWordCount(res.NearYear, 1) >= 2 {
		b.add(res.NearYear, year, BucketNearYear)
	}
	if hints.MostlyNonLatin {
		if romanized := textutil.Transliterate(res.CleanedCore); romanized != "" {
			b.add(romanized, year, BucketRomanized)
		}
	}
	if res.CleanedCore != "" {
		if year != 0 {
			b.add(res.CleanedCore, year, BucketCoreWithYear)
		}
		b.add(res.CleanedCore, 0, BucketCoreNoYear)
	}
	return b.out
}

func longestMultiWord(fragments []string) string {
	best := ""
	for _, frag := range fragments {
		if textutil.AlphaWordCount(frag, 1) < 2 {
			continue
		}
		if len(frag) > len(best) {
			best = frag
		}
	}
	return best
}
