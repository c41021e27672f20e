// Package matcher resolves normalized candidates against the metadata
// catalog. Candidates run in priority order under a shared call budget;
// the first one to clear its acceptance bar wins. Year guards and a
// noisy-title penalty run before any threshold comparison, and
// certification plus genres are fetched only for an accepted result.
package matcher
