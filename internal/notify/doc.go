// Package notify publishes one message per successfully placed segment to
// the downstream message broker. The broker provides durability and
// at-least-once delivery; this client only guarantees that a publish failure
// is retried over a fresh connection and never rolls back the filesystem
// placement that triggered it.
package notify
