// Package querygen converts normalized name material into the ordered,
// deduplicated, capped list of catalog queries for one item.
//
// Candidates are grouped into priority buckets (core with year, core alone,
// near-year fragment, longest multi-word fragment, and, in the rescue pass,
// a romanized core). Dedup happens on lowercase text plus year filter before
// appending, and caps drop the lowest-priority entries without reordering
// the kept ones.
package querygen
