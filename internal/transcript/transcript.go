// Package transcript handles the plain-text transcript format consumed by the
// pipeline: optional per-line timestamp-range markers of the form
// [MM:SS.xx–MM:SS.xx] followed by spoken text.
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// markerRE matches a [MM:SS.xx–MM:SS.xx] range marker. The separator is an en
// dash, matching the fetcher's output format. Minutes may exceed two digits
// for long sources.
var markerRE = regexp.MustCompile(`\[(\d{1,4}:\d{2}\.\d{2})–(\d{1,4}:\d{2}\.\d{2})\]`)

// FormatTimestamp renders d as MM:SS.xx with hundredths precision.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := d.Seconds()
	minutes := int(total) / 60
	secs := total - float64(minutes)*60
	return fmt.Sprintf("%02d:%05.2f", minutes, secs)
}

// FormatRange renders a start/end pair as a [MM:SS.xx–MM:SS.xx] marker.
func FormatRange(start, end time.Duration) string {
	return "[" + FormatTimestamp(start) + "–" + FormatTimestamp(end) + "]"
}

// ParseTimestamp parses MM:SS.xx into a duration.
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	i := strings.Index(s, ":")
	if i < 0 {
		return 0, fmt.Errorf("timestamp %q: missing colon", s)
	}
	minutes, err := strconv.Atoi(s[:i])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("timestamp %q: bad minutes", s)
	}
	secs, err := strconv.ParseFloat(s[i+1:], 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, fmt.Errorf("timestamp %q: bad seconds", s)
	}
	return time.Duration((float64(minutes)*60 + secs) * float64(time.Second)), nil
}

// Span is a parsed timestamp-range marker.
type Span struct {
	Start time.Duration
	End   time.Duration
}

// Spans returns every timestamp-range marker found in text, in order of
// appearance. Malformed markers are skipped.
func Spans(text string) []Span {
	matches := markerRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Span, 0, len(matches))
	for _, m := range matches {
		start, err := ParseTimestamp(m[1])
		if err != nil {
			continue
		}
		end, err := ParseTimestamp(m[2])
		if err != nil {
			continue
		}
		out = append(out, Span{Start: start, End: end})
	}
	return out
}

// End reports the latest end timestamp found in the transcript's markers.
// ok is false when the transcript carries no usable markers.
func End(text string) (time.Duration, bool) {
	spans := Spans(text)
	if len(spans) == 0 {
		return 0, false
	}
	var max time.Duration
	for _, sp := range spans {
		if sp.End > max {
			max = sp.End
		}
	}
	return max, true
}

// HasMarkers reports whether text contains at least one timestamp-range
// marker.
func HasMarkers(text string) bool {
	return markerRE.MatchString(text)
}
