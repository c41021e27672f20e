// Package plex triggers Plex Media Server section refreshes for newly
// placed library files. Refreshes are advisory: failures are reported but
// never block the pipeline.
package plex
