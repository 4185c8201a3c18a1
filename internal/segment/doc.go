// Package segment defines the canonical segment filename grammar shared by
// the capture monitor and the placement engine.
//
// A finalized segment is named
// {STATION}-{YYYY}-{MM}-{DD}T{HH}:{MM}:{SS}Z.mp3, optionally suffixed with a
// conflict ordinal (-1, -2, ...) before the extension when two
// content-distinct files would otherwise share a name. While a segment is
// still being written it carries the provisional .temp extension instead.
package segment
