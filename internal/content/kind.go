package content

import (
	"fmt"
	"strings"

	"filmsuite/internal/textutil"
)

// Kind names one generated artifact.
type Kind string

const (
	KindSummary         Kind = "summary"
	KindTargetAudience  Kind = "target_audience"
	KindDiscussionGuide Kind = "discussion_guide"
	KindSocialPosts     Kind = "social_posts"
)

var allKinds = []Kind{KindSummary, KindTargetAudience, KindDiscussionGuide, KindSocialPosts}

// Kinds returns every kind in display order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind accepts a kind name case-insensitively, with dashes or spaces in
// place of underscores.
func ParseKind(value string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	for _, kind := range allKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q (want one of %s)", value, strings.Join(kindNames(), ", "))
}

// Label returns a human-readable name such as "Target Audience".
func (k Kind) Label() string {
	return textutil.HumanizeToken(string(k))
}

func kindNames() []string {
	names := make([]string, 0, len(allKinds))
	for _, kind := range allKinds {
		names = append(names, string(kind))
	}
	return names
}
