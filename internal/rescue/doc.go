// Package rescue replays unresolved items once at end-of-run with a
// fresh candidate set that includes the romanized bucket. Replay is a
// pure second pass: it reads a snapshot, reuses each item's remaining
// call budget, and never revisits items the main pass resolved.
package rescue
