package transcript

import (
	"sort"
	"strings"
)

// Normalize returns a copy of t with chapters ordered by start, empty or
// inverted chapters dropped, overlaps clamped to the previous chapter's end,
// and category scores clamped to [0,1]. Chapters and Categories are never nil.
func Normalize(t Transcript) Transcript {
	chapters := make([]Chapter, 0, len(t.Chapters))
	for _, chapter := range t.Chapters {
		chapter.Headline = strings.TrimSpace(chapter.Headline)
		chapter.Summary = strings.TrimSpace(chapter.Summary)
		chapter.Gist = strings.TrimSpace(chapter.Gist)
		if chapter.Start < 0 {
			chapter.Start = 0
		}
		chapters = append(chapters, chapter)
	}
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Start < chapters[j].Start })

	kept := chapters[:0]
	var prevEnd int64
	for _, chapter := range chapters {
		if len(kept) > 0 && chapter.Start < prevEnd {
			chapter.Start = prevEnd
		}
		if chapter.End <= chapter.Start {
			continue
		}
		kept = append(kept, chapter)
		prevEnd = chapter.End
	}

	categories := make(map[string]float64, len(t.Categories))
	for label, score := range t.Categories {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		switch {
		case score < 0:
			score = 0
		case score > 1:
			score = 1
		}
		categories[label] = score
	}

	return Transcript{Text: t.Text, Chapters: kept, Categories: categories}
}
