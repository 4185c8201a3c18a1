// Package daemon ties the capture monitor, placement watcher, and status API
// into a single lifecycle with flock-based locking to prevent multiple
// archiver instances from running against the same tree.
package daemon
