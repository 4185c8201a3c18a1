package capture

import (
	"regexp"
	"strings"
)

// EventKind identifies what a diagnostic line told us about the segment
// lifecycle.
type EventKind int

const (
	// EventNone is an unrecognized line. Most lines are.
	EventNone EventKind = iota
	// EventOpened means ffmpeg started writing a new provisional file.
	EventOpened
	// EventClosed means ffmpeg finished a provisional file.
	EventClosed
	// EventTitle is an ICY stream title update embedded in the source.
	EventTitle
)

// Event is one parsed diagnostic line.
type Event struct {
	Kind EventKind
	// Path is the provisional file the event refers to. Set for Opened
	// and Closed.
	Path string
	// Stale is a previously active file whose close line never arrived.
	// Set only on Opened when the new file supersedes an unfinalized one.
	Stale string
	// Title is the stream title text. Set only for Title events.
	Title string
}

// The segment muxer announces each file it opens and, with
// segment_time_metadata enabled, each file it finishes. Stream title updates
// come from the ICY metadata ffmpeg relays at verbose log level.
var (
	openedPattern = regexp.MustCompile(`Opening '([^']+\.temp)' for writing`)
	closedPattern = regexp.MustCompile(`segment:'([^']+\.temp)' count:(\d+) ended`)
	titlePattern  = regexp.MustCompile(`Metadata update for StreamTitle: (.+)`)
)

// Classify maps one diagnostic line and the currently active provisional
// path to an event and the new active path. It is a pure function so the
// whole line protocol can be tested without a subprocess. Unrecognized lines
// return EventNone and leave the active path unchanged.
func Classify(line, active string) (Event, string) {
	if m := openedPattern.FindStringSubmatch(line); m != nil {
		event := Event{Kind: EventOpened, Path: m[1]}
		if active != "" && active != m[1] {
			event.Stale = active
		}
		return event, m[1]
	}
	if m := closedPattern.FindStringSubmatch(line); m != nil {
		next := active
		if active == m[1] {
			next = ""
		}
		return Event{Kind: EventClosed, Path: m[1]}, next
	}
	if m := titlePattern.FindStringSubmatch(line); m != nil {
		return Event{Kind: EventTitle, Title: strings.TrimSpace(m[1])}, active
	}
	return Event{Kind: EventNone}, active
}
