// Package classify turns a match decision plus structural filename hints
// into a terminal routing kind: movie, tv, their kids variants, or
// unresolved. Decisions are pure functions of their inputs.
package classify
