// Package textutil provides the structural text predicates and token
// classifiers shared by every stage of the classification pipeline, plus
// fuzzy similarity scoring and filename sanitization.
//
// The guard predicates (years, TV markers, leading numerals, non-Latin
// ratio) are the single source of truth for structural markers: later
// stages call them instead of re-deriving ad hoc regex.
package textutil
