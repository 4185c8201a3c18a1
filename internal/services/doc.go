// Package services provides the shared error taxonomy and context carriers
// used by the capture and placement components. Sentinel errors classify
// failures (transient I/O, data integrity, configuration, external tool) so
// callers can decide whether to retry, quarantine, or terminate without
// string matching.
package services
