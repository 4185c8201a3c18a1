// Package store persists the segment journal: one row per segment observed
// by the pipeline, carrying its lifecycle state from recording through
// placement. The journal backs the CLI's segment listing and daemon health
// reporting; the canonical archive remains the filesystem itself.
package store
