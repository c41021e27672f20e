// Package workflow drives ingestion runs end to end: discover incoming
// files, classify them concurrently under a shared catalog call budget,
// replay the unresolved remainder once, then place files, trigger Plex
// refreshes, and record outcomes in the manifest.
package workflow
