package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a segment.
type Status string

const (
	// StatusRecording marks the segment the capture process is writing.
	StatusRecording Status = "recording"
	// StatusClosed marks a finalized segment awaiting placement.
	StatusClosed Status = "closed"
	// StatusPlaced marks a segment moved into the dated archive tree.
	StatusPlaced Status = "placed"
	// StatusDuplicate marks an arrival discarded as content-identical to
	// an already-placed file.
	StatusDuplicate Status = "duplicate"
	// StatusUnmatched marks a file routed to the quarantine directory.
	StatusUnmatched Status = "unmatched"
	// StatusFailed marks a segment whose placement aborted with an error.
	StatusFailed Status = "failed"
)

var allStatuses = []Status{
	StatusRecording,
	StatusClosed,
	StatusPlaced,
	StatusDuplicate,
	StatusUnmatched,
	StatusFailed,
}

// Record is one journal row.
type Record struct {
	ID            int64
	Station       string
	Filename      string
	Path          string
	Status        Status
	ContentDigest string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HealthSummary aggregates journal counts per lifecycle state.
type HealthSummary struct {
	Total     int
	Recording int
	Closed    int
	Placed    int
	Duplicate int
	Unmatched int
	Failed    int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}
