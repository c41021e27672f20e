// Package organizer places classified files into the Plex-style library
// tree: Movies/"Title (Year)"/, TV/Series/Season NN/, their kids
// variants, and the unsorted sink for unresolved items. Paths are kept
// inside conservative Windows length limits and conflicts get numeric
// suffixes.
package organizer
