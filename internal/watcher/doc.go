// Package watcher discovers candidate files in the incoming directory.
// It polls rather than relying on filesystem events, so network mounts
// and rsync-style writers behave the same as local copies: a file counts
// as ready only after its size and mtime survive the stability window.
package watcher
