package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "segments.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTrackAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	record, err := s.Track(ctx, "WBOR", "WBOR-2025-02-14T00:35:01Z.mp3", "/archive/WBOR-2025-02-14T00:35:01Z.temp", StatusRecording)
	if err != nil {
		t.Fatal(err)
	}
	if record.Status != StatusRecording {
		t.Fatalf("status = %q", record.Status)
	}
	if record.Station != "WBOR" {
		t.Fatalf("station = %q", record.Station)
	}

	fetched, err := s.GetByFilename(ctx, record.Filename)
	if err != nil {
		t.Fatal(err)
	}
	if fetched == nil || fetched.ID != record.ID {
		t.Fatalf("fetched = %+v", fetched)
	}
}

func TestTrackUpsertKeepsRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Track(ctx, "WBOR", "a.mp3", "/spool/a.temp", StatusRecording)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Track(ctx, "WBOR", "a.mp3", "/spool/a.mp3", StatusClosed)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created new row: %d != %d", second.ID, first.ID)
	}
	if second.Status != StatusClosed || second.Path != "/spool/a.mp3" {
		t.Fatalf("row not refreshed: %+v", second)
	}
}

func TestTransition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Track(ctx, "WBOR", "a.mp3", "/spool/a.mp3", StatusClosed); err != nil {
		t.Fatal(err)
	}
	if err := s.Transition(ctx, "a.mp3", StatusPlaced, "/archive/2025/02/14/a.mp3", "digest123", ""); err != nil {
		t.Fatal(err)
	}
	record, err := s.GetByFilename(ctx, "a.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if record.Status != StatusPlaced {
		t.Fatalf("status = %q", record.Status)
	}
	if record.ContentDigest != "digest123" {
		t.Fatalf("digest = %q", record.ContentDigest)
	}
	if record.Path != "/archive/2025/02/14/a.mp3" {
		t.Fatalf("path = %q", record.Path)
	}
}

func TestTransitionUntrackedInserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Transition(ctx, "orphan.mp3", StatusUnmatched, "/archive/unmatched/orphan.mp3", "", ""); err != nil {
		t.Fatal(err)
	}
	record, err := s.GetByFilename(ctx, "orphan.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if record == nil || record.Status != StatusUnmatched {
		t.Fatalf("record = %+v", record)
	}
}

func TestListFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seeds := map[string]Status{
		"a.mp3": StatusPlaced,
		"b.mp3": StatusPlaced,
		"c.mp3": StatusDuplicate,
		"d.mp3": StatusFailed,
	}
	for filename, status := range seeds {
		if _, err := s.Track(ctx, "WBOR", filename, "/x/"+filename, status); err != nil {
			t.Fatal(err)
		}
	}

	placed, err := s.List(ctx, StatusPlaced)
	if err != nil {
		t.Fatal(err)
	}
	if len(placed) != 2 {
		t.Fatalf("placed = %d rows", len(placed))
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("all = %d rows", len(all))
	}
}

func TestHealthCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, status := range []Status{StatusPlaced, StatusPlaced, StatusUnmatched, StatusFailed} {
		filename := string(rune('a'+i)) + ".mp3"
		if _, err := s.Track(ctx, "WBOR", filename, "", status); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := s.Health(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 4 || summary.Placed != 2 || summary.Unmatched != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Placed "); !ok || status != StatusPlaced {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("unknown status should not parse")
	}
}
