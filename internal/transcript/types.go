package transcript

import (
	"sort"
	"time"

	"filmsuite/internal/timecode"
)

// Transcript is the persisted transcription of one video.
type Transcript struct {
	Text       string             `json:"text"`
	Chapters   []Chapter          `json:"chapters"`
	Categories map[string]float64 `json:"categories"`
}

// Chapter is one auto-detected chapter. Start and End are milliseconds.
type Chapter struct {
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Gist     string `json:"gist"`
}

// Duration returns the chapter length.
func (c Chapter) Duration() time.Duration {
	return time.Duration(c.End-c.Start) * time.Millisecond
}

// Chapter returns the chapter at the 1-based ordinal.
func (t Transcript) Chapter(ordinal int) (Chapter, bool) {
	if ordinal < 1 || ordinal > len(t.Chapters) {
		return Chapter{}, false
	}
	return t.Chapters[ordinal-1], true
}

// Markers returns YouTube-style chapter markers.
func (t Transcript) Markers() []timecode.Marker {
	entries := make([]timecode.Entry, 0, len(t.Chapters))
	for _, chapter := range t.Chapters {
		entries = append(entries, timecode.Entry{StartMS: chapter.Start, Title: chapter.Headline})
	}
	return timecode.ChapterMarkers(entries)
}

// Category is a topic label with its relevance score.
type Category struct {
	Label string
	Score float64
}

// TopCategories returns up to n categories ordered by descending score, ties
// broken by label. n <= 0 returns all of them.
func (t Transcript) TopCategories(n int) []Category {
	out := make([]Category, 0, len(t.Categories))
	for label, score := range t.Categories {
		out = append(out, Category{Label: label, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Source reports where GetOrCreate obtained a transcript.
type Source string

const (
	SourceCache       Source = "cache"
	SourceTranscribed Source = "transcribed"
)
