// Package catalog defines the external metadata provider contract, its
// TMDB implementation, and the shared call-budget resource.
//
// Every external query must first acquire from an ItemBudget, which charges
// both the per-item and the run-wide ceiling atomically. Transport failures
// carry transient/timeout markers so matching can treat them as empty
// result sets without aborting a run.
package catalog
