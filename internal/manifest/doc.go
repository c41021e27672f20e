// Package manifest records ingestion runs and their per-file outcomes in
// a SQLite database, so results survive restarts and can be inspected
// from the CLI.
package manifest
