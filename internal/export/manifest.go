package export

import (
	"fmt"
	"strings"
	"time"

	"filmsuite/internal/content"
)

// manifest renders the README.txt placed in every archive.
func manifest(videoName string, created time.Time, entries []entry) string {
	var b strings.Builder
	b.WriteString("Documentary Film Content Package\n")
	fmt.Fprintf(&b, "Generated on: %s\n", created.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Video: %s\n\n", videoName)
	b.WriteString("Contents:\n")
	b.WriteString("1. Transcript and Chapters (JSON)\n")
	b.WriteString("2. Chapter Video Clips\n")
	b.WriteString("3. Generated Content:\n")
	for _, kind := range content.Kinds() {
		fmt.Fprintf(&b, "- %s\n", manifestLabel(kind))
	}
	b.WriteString("\nIncluded files:\n")
	if len(entries) == 0 {
		b.WriteString("(none)\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s\n", e.name)
	}
	b.WriteString("\nNote: This package contains all available generated content at the time of export.\n")
	return b.String()
}

func manifestLabel(kind content.Kind) string {
	switch kind {
	case content.KindTargetAudience:
		return "Target Audience Analysis"
	case content.KindSocialPosts:
		return "Social Media Posts"
	default:
		return kind.Label()
	}
}
