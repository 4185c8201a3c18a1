package capture

import "testing"

func TestClassifyOpened(t *testing.T) {
	line := "[segment @ 0x55d] Opening '/archive/WBOR-2025-03-07T14:00:00Z.temp' for writing"
	event, active := Classify(line, "")
	if event.Kind != EventOpened {
		t.Fatalf("kind = %v, want EventOpened", event.Kind)
	}
	if event.Path != "/archive/WBOR-2025-03-07T14:00:00Z.temp" {
		t.Errorf("path = %q", event.Path)
	}
	if event.Stale != "" {
		t.Errorf("stale = %q, want empty for first open", event.Stale)
	}
	if active != event.Path {
		t.Errorf("active = %q, want opened path", active)
	}
}

func TestClassifyOpenSupersedesUnclosedActive(t *testing.T) {
	previous := "/archive/WBOR-2025-03-07T14:00:00Z.temp"
	line := "[segment @ 0x55d] Opening '/archive/WBOR-2025-03-07T14:05:00Z.temp' for writing"
	event, active := Classify(line, previous)
	if event.Kind != EventOpened {
		t.Fatalf("kind = %v, want EventOpened", event.Kind)
	}
	if event.Stale != previous {
		t.Errorf("stale = %q, want %q", event.Stale, previous)
	}
	if active != "/archive/WBOR-2025-03-07T14:05:00Z.temp" {
		t.Errorf("active = %q", active)
	}
}

func TestClassifyClosed(t *testing.T) {
	path := "/archive/WBOR-2025-03-07T14:00:00Z.temp"
	line := "[segment @ 0x55d] segment:'" + path + "' count:3 ended"
	event, active := Classify(line, path)
	if event.Kind != EventClosed {
		t.Fatalf("kind = %v, want EventClosed", event.Kind)
	}
	if event.Path != path {
		t.Errorf("path = %q", event.Path)
	}
	if active != "" {
		t.Errorf("active = %q, want cleared after close", active)
	}
}

func TestClassifyClosedForNonActiveKeepsActive(t *testing.T) {
	active := "/archive/WBOR-2025-03-07T14:05:00Z.temp"
	line := "[segment @ 0x55d] segment:'/archive/WBOR-2025-03-07T14:00:00Z.temp' count:2 ended"
	event, next := Classify(line, active)
	if event.Kind != EventClosed {
		t.Fatalf("kind = %v, want EventClosed", event.Kind)
	}
	if next != active {
		t.Errorf("active = %q, want unchanged %q", next, active)
	}
}

func TestClassifyTitle(t *testing.T) {
	line := "[mp3 @ 0x55d] Metadata update for StreamTitle: The Night Show - Episode 12 "
	event, active := Classify(line, "current")
	if event.Kind != EventTitle {
		t.Fatalf("kind = %v, want EventTitle", event.Kind)
	}
	if event.Title != "The Night Show - Episode 12" {
		t.Errorf("title = %q", event.Title)
	}
	if active != "current" {
		t.Errorf("active = %q, want unchanged", active)
	}
}

func TestClassifyIgnoresNoise(t *testing.T) {
	lines := []string{
		"",
		"Input #0, mp3, from 'https://stream.example.org/wbor':",
		"  Duration: N/A, start: 0.000000, bitrate: 128 kb/s",
		"Opening 'https://stream.example.org/wbor' for reading",
		"size=    4608KiB time=00:04:54.98 bitrate= 128.0kbits/s speed=   1x",
	}
	for _, line := range lines {
		event, active := Classify(line, "keep")
		if event.Kind != EventNone {
			t.Errorf("Classify(%q) kind = %v, want EventNone", line, event.Kind)
		}
		if active != "keep" {
			t.Errorf("Classify(%q) changed active to %q", line, active)
		}
	}
}
