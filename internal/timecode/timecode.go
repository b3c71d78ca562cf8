package timecode

import (
	"fmt"
	"strings"
)

const (
	msPerSecond   = 1000
	secondsPerMin = 60
	secondsPerHr  = 3600
)

// ToTimecode renders ms as HH:MM:SS. Sub-second remainders are truncated and
// hours are unbounded, so 100 hours renders as "100:00:00". Negative input
// clamps to zero.
func ToTimecode(ms int64) string {
	h, m, s := split(ms)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ToSeconds converts ms to fractional seconds.
func ToSeconds(ms int64) float64 {
	return float64(ms) / msPerSecond
}

// Entry is one chapter start handed to ChapterMarkers.
type Entry struct {
	StartMS int64
	Title   string
}

// Marker is a rendered chapter marker line.
type Marker struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"chapter"`
}

// String renders the marker as "<timestamp> <title>".
func (m Marker) String() string {
	return m.Timestamp + " " + m.Title
}

// ChapterMarkers renders YouTube chapter markers. The first marker is always
// at zero. MM:SS is used unless the last chapter starts at or after the one
// hour mark, in which case every marker uses HH:MM:SS.
func ChapterMarkers(entries []Entry) []Marker {
	if len(entries) == 0 {
		return nil
	}
	lastHour, _, _ := split(entries[len(entries)-1].StartMS)
	markers := make([]Marker, 0, len(entries))
	for idx, entry := range entries {
		var h, m, s int64
		if idx > 0 {
			h, m, s = split(entry.StartMS)
		}
		stamp := fmt.Sprintf("%02d:%02d", m, s)
		if lastHour > 0 {
			stamp = fmt.Sprintf("%02d:%02d:%02d", h, m, s)
		}
		markers = append(markers, Marker{
			Index:     idx + 1,
			Timestamp: stamp,
			Title:     strings.TrimSpace(entry.Title),
		})
	}
	return markers
}

// FormatMarkers joins markers one per line, ready to paste into a video description.
func FormatMarkers(markers []Marker) string {
	lines := make([]string, 0, len(markers))
	for _, marker := range markers {
		lines = append(lines, marker.String())
	}
	return strings.Join(lines, "\n")
}

func split(ms int64) (int64, int64, int64) {
	if ms < 0 {
		ms = 0
	}
	total := ms / msPerSecond
	return total / secondsPerHr, (total % secondsPerHr) / secondsPerMin, total % secondsPerMin
}
