// Package capture supervises the ffmpeg process that records the live stream
// into fixed-duration segment files. It parses ffmpeg's diagnostic output to
// learn when one segment closes and the next opens, and renames each closed
// segment from its provisional extension to its final one so the placement
// watcher can pick it up.
package capture
