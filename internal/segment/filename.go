package segment

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// FinalExt marks a segment whose bytes are complete and closed.
	FinalExt = ".mp3"
	// ProvisionalExt marks a segment the capture process is still writing.
	ProvisionalExt = ".temp"
)

// filenamePattern matches ISO 8601 UTC timestamped segment names, e.g.
// WBOR-2025-02-14T00:35:01Z.mp3 or WBOR-2025-02-14T00:35:01Z-1.mp3.
var filenamePattern = regexp.MustCompile(
	`^(?P<station>.+)-(?P<year>\d{4})-(?P<month>\d{2})-(?P<day>\d{2})T` +
		`(?P<hour>\d{2}):(?P<minute>\d{2}):(?P<second>\d{2})Z(?:-(?P<ordinal>\d+))?\.mp3$`,
)

// Timestamp carries the zero-padded timestamp fields embedded in a segment
// filename. Fields stay strings so notification payloads and archive paths
// reproduce the filename digits exactly.
type Timestamp struct {
	Year   string `json:"year"`
	Month  string `json:"month"`
	Day    string `json:"day"`
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
	Second string `json:"second"`
}

// Time converts the parsed fields back into a UTC instant.
func (t Timestamp) Time() (time.Time, error) {
	value := fmt.Sprintf("%s-%s-%sT%s:%s:%sZ", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
	parsed, err := time.Parse("2006-01-02T15:04:05Z", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("segment timestamp %q: %w", value, err)
	}
	return parsed, nil
}

// DatedDir returns the year/month/day archive path components joined under
// root, e.g. {root}/2025/02/14.
func (t Timestamp) DatedDir(root string) string {
	return filepath.Join(root, t.Year, t.Month, t.Day)
}

// Name is a parsed segment filename.
type Name struct {
	Station   string
	Timestamp Timestamp
	// Ordinal is the conflict counter, zero when the name carries none.
	Ordinal int
}

// Parse matches filename against the canonical grammar. The second return
// value reports whether the name conformed; non-conforming names are not an
// error, they route to the unmatched directory.
func Parse(filename string) (Name, bool) {
	match := filenamePattern.FindStringSubmatch(filename)
	if match == nil {
		return Name{}, false
	}
	name := Name{
		Station: match[1],
		Timestamp: Timestamp{
			Year:   match[2],
			Month:  match[3],
			Day:    match[4],
			Hour:   match[5],
			Minute: match[6],
			Second: match[7],
		},
	}
	if match[8] != "" {
		ordinal, err := strconv.Atoi(match[8])
		if err != nil {
			return Name{}, false
		}
		name.Ordinal = ordinal
	}
	return name, true
}

// Filename renders the canonical filename without any conflict ordinal.
func (n Name) Filename() string {
	t := n.Timestamp
	return fmt.Sprintf("%s-%s-%s-%sT%s:%s:%sZ%s",
		n.Station, t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, FinalExt)
}

// OrdinalFilename renders the filename for a given conflict ordinal. Ordinal
// zero yields the canonical name.
func (n Name) OrdinalFilename(ordinal int) string {
	base := strings.TrimSuffix(n.Filename(), FinalExt)
	if ordinal <= 0 {
		return base + FinalExt
	}
	return fmt.Sprintf("%s-%d%s", base, ordinal, FinalExt)
}

// Format builds the canonical filename for a station and start instant.
func Format(station string, start time.Time) string {
	return FormatWithExt(station, start, FinalExt)
}

// FormatWithExt builds a segment filename with an explicit extension, used
// for the provisional form.
func FormatWithExt(station string, start time.Time, ext string) string {
	return strings.ToUpper(strings.TrimSpace(station)) +
		start.UTC().Format("-2006-01-02T15:04:05Z") + ext
}

// CapturePattern returns the strftime pattern handed to the capture process
// so it stamps each provisional file with its UTC open time.
func CapturePattern(dir, station string) string {
	base := strings.ToUpper(strings.TrimSpace(station)) + "-%Y-%m-%dT%H:%M:%SZ" + ProvisionalExt
	return filepath.Join(dir, base)
}

// FinalPath swaps a provisional extension for the final one. It reports
// failure when path does not carry the provisional extension.
func FinalPath(path string) (string, bool) {
	if !strings.HasSuffix(path, ProvisionalExt) {
		return "", false
	}
	return strings.TrimSuffix(path, ProvisionalExt) + FinalExt, true
}
