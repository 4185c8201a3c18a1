// Package place admits finalized segment files into the canonical archive
// layout. Each placement parses the filename, takes an exclusive per-directory
// lock, resolves name collisions by content digest, performs the atomic move,
// and publishes exactly one notification per file that lands in the tree.
// Conforming names go under {archive}/{year}/{month}/{day}; everything else
// lands in the unmatched directory.
package place
