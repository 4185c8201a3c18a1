package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"aircheck/internal/store"
)

func TestParseStatusFlags(t *testing.T) {
	statuses, err := parseStatusFlags([]string{"placed", "Failed"})
	if err != nil {
		t.Fatalf("parseStatusFlags: %v", err)
	}
	if len(statuses) != 2 || statuses[0] != store.StatusPlaced || statuses[1] != store.StatusFailed {
		t.Fatalf("statuses = %v", statuses)
	}
	if _, err := parseStatusFlags([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestWriteSegmentsPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	writeSegments(&buf, []*store.Record{
		{
			ID:        1,
			Filename:  "WBOR-2025-03-07T14:00:00Z.mp3",
			Status:    store.StatusPlaced,
			UpdatedAt: time.Date(2025, 3, 7, 14, 5, 0, 0, time.UTC),
		},
	})
	out := buf.String()
	if !strings.Contains(out, "WBOR-2025-03-07T14:00:00Z.mp3") {
		t.Errorf("output missing filename: %q", out)
	}
	if !strings.Contains(out, "placed") {
		t.Errorf("output missing status: %q", out)
	}
	// A bytes.Buffer is not a terminal, so output must be tab separated.
	if !strings.Contains(out, "\t") {
		t.Errorf("expected plain tab-separated output: %q", out)
	}
}

func TestWriteSegmentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeSegments(&buf, nil)
	if !strings.Contains(buf.String(), "No segments tracked") {
		t.Errorf("output = %q", buf.String())
	}
}
