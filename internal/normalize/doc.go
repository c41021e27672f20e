// Package normalize turns raw release filenames into clean query material.
//
// Clean runs a fixed, ordered pipeline of pure text transformations:
// boundary splitting, junk-token stripping, guarded uploader-tail trimming,
// clause pruning, the bilingual inner-parenthesis rule, and final whitespace
// normalization. The stage order is a contract; reordering stages changes
// observable output for real inputs.
//
// The pipeline is deterministic and idempotent: re-cleaning a cleaned core
// string is a no-op. Structural evidence (years, episode markers, leading
// numerals, script composition) is captured once per raw name via HintsFor
// and never recomputed downstream.
package normalize
