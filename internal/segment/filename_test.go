package segment

import (
	"path/filepath"
	"testing"
	"time"
)

func TestParseCanonicalName(t *testing.T) {
	name, ok := Parse("WBOR-2025-02-14T00:35:01Z.mp3")
	if !ok {
		t.Fatal("expected filename to parse")
	}
	if name.Station != "WBOR" {
		t.Fatalf("station = %q", name.Station)
	}
	want := Timestamp{Year: "2025", Month: "02", Day: "14", Hour: "00", Minute: "35", Second: "01"}
	if name.Timestamp != want {
		t.Fatalf("timestamp = %+v, want %+v", name.Timestamp, want)
	}
	if name.Ordinal != 0 {
		t.Fatalf("ordinal = %d, want 0", name.Ordinal)
	}
}

func TestParseConflictOrdinal(t *testing.T) {
	name, ok := Parse("WBOR-2025-02-14T00:40:00Z-3.mp3")
	if !ok {
		t.Fatal("expected filename to parse")
	}
	if name.Ordinal != 3 {
		t.Fatalf("ordinal = %d, want 3", name.Ordinal)
	}
	if got := name.Filename(); got != "WBOR-2025-02-14T00:40:00Z.mp3" {
		t.Fatalf("canonical filename = %q", got)
	}
}

func TestParseRejectsNonConforming(t *testing.T) {
	cases := []string{
		"garbage.mp3",
		"WBOR-2025-02-14T00:35:01Z.temp",
		"WBOR-2025-2-14T00:35:01Z.mp3",
		"WBOR-2025-02-14 00:35:01.mp3",
		"2025-02-14T00:35:01Z.mp3",
	}
	for _, filename := range cases {
		if _, ok := Parse(filename); ok {
			t.Errorf("Parse(%q) unexpectedly matched", filename)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"WBOR-2025-02-14T00:35:01Z.mp3",
		"KEXP-1999-12-31T23:59:59Z.mp3",
		"WBOR-2025-02-14T00:35:01Z-2.mp3",
	}
	for _, input := range inputs {
		name, ok := Parse(input)
		if !ok {
			t.Fatalf("Parse(%q) failed", input)
		}
		// Round-tripping reproduces the original minus any ordinal.
		want := name.OrdinalFilename(0)
		if got := name.Filename(); got != want {
			t.Errorf("Filename() = %q, want %q", got, want)
		}
		if name.Ordinal == 0 && name.Filename() != input {
			t.Errorf("round trip of %q produced %q", input, name.Filename())
		}
	}
}

func TestTimestampTime(t *testing.T) {
	name, ok := Parse("WBOR-2025-02-14T00:35:01Z.mp3")
	if !ok {
		t.Fatal("parse failed")
	}
	instant, err := name.Timestamp.Time()
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 2, 14, 0, 35, 1, 0, time.UTC)
	if !instant.Equal(want) {
		t.Fatalf("instant = %v, want %v", instant, want)
	}
}

func TestDatedDir(t *testing.T) {
	name, _ := Parse("WBOR-2025-02-14T00:35:01Z.mp3")
	got := name.Timestamp.DatedDir("/archive")
	want := filepath.Join("/archive", "2025", "02", "14")
	if got != want {
		t.Fatalf("DatedDir = %q, want %q", got, want)
	}
}

func TestFormat(t *testing.T) {
	start := time.Date(2025, 2, 14, 0, 40, 0, 0, time.UTC)
	if got := Format("wbor", start); got != "WBOR-2025-02-14T00:40:00Z.mp3" {
		t.Fatalf("Format = %q", got)
	}
	name, ok := Parse(Format("WBOR", start))
	if !ok {
		t.Fatal("formatted name should parse")
	}
	instant, err := name.Timestamp.Time()
	if err != nil {
		t.Fatal(err)
	}
	if !instant.Equal(start) {
		t.Fatalf("round trip instant = %v, want %v", instant, start)
	}
}

func TestOrdinalFilename(t *testing.T) {
	name, _ := Parse("WBOR-2025-02-14T00:35:01Z.mp3")
	if got := name.OrdinalFilename(1); got != "WBOR-2025-02-14T00:35:01Z-1.mp3" {
		t.Fatalf("OrdinalFilename(1) = %q", got)
	}
	if got := name.OrdinalFilename(0); got != "WBOR-2025-02-14T00:35:01Z.mp3" {
		t.Fatalf("OrdinalFilename(0) = %q", got)
	}
}

func TestFinalPath(t *testing.T) {
	final, ok := FinalPath("/archive/WBOR-2025-02-14T00:35:01Z.temp")
	if !ok {
		t.Fatal("expected provisional path to convert")
	}
	if final != "/archive/WBOR-2025-02-14T00:35:01Z.mp3" {
		t.Fatalf("final = %q", final)
	}
	if _, ok := FinalPath("/archive/WBOR-2025-02-14T00:35:01Z.mp3"); ok {
		t.Fatal("already-final path should not convert")
	}
}

func TestCapturePattern(t *testing.T) {
	got := CapturePattern("/archive", "wbor")
	want := filepath.Join("/archive", "WBOR-%Y-%m-%dT%H:%M:%SZ.temp")
	if got != want {
		t.Fatalf("CapturePattern = %q, want %q", got, want)
	}
}
