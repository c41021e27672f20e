// Command curator normalizes release-named media files, resolves them
// against TMDB, and files them into a Plex-style library layout.
package main
