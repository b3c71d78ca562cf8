package content

import (
	"fmt"
	"strings"
	"text/template"
)

// PromptVersion changes whenever any template text below changes.
const PromptVersion = "2024-06.1"

const summaryPrompt = `Here is an documentary film transcript:
{{.Transcript}}

Please do the following:
1. Summarize the transcript at a graduate students reading level.
2. Highlight the key moments / topics from the transcript as 3-5 word sub headings. Then for each of these subheadings, add a one sentence summary.
`

const targetAudiencePrompt = `Analyze the transcript of my documentary film and identify potential target audiences based on the salient themes. For each audience, explain how their receptivity to various issues and content framing might differ, considering factors such as demographics, interests, and values.

Transcript:
{{.Transcript}}
`

const discussionGuidePrompt = `Create thought-provoking discussion / study guide questions for my documentary film that challenge the audience to engage with its themes, reflect on their own experiences, and explore actionable solutions. Give me 15-20 questions.

Transcript:
{{.Transcript}}
`

const socialPostsPrompt = `Create impactful social media posts to promote my documentary film. The posts should capture attention, highlight key themes, and encourage viewers to watch and engage with the film. Include calls to action, thought-provoking questions, and hashtags relevant to the social issue. Posts should be tailored for platforms like Instagram, Twitter, and Facebook.

Transcript:
{{.Transcript}}
`

var prompts = map[Kind]*template.Template{
	KindSummary:         template.Must(template.New(string(KindSummary)).Parse(summaryPrompt)),
	KindTargetAudience:  template.Must(template.New(string(KindTargetAudience)).Parse(targetAudiencePrompt)),
	KindDiscussionGuide: template.Must(template.New(string(KindDiscussionGuide)).Parse(discussionGuidePrompt)),
	KindSocialPosts:     template.Must(template.New(string(KindSocialPosts)).Parse(socialPostsPrompt)),
}

// RenderPrompt embeds the full transcript text in the template for kind.
func RenderPrompt(kind Kind, transcriptText string) (string, error) {
	tmpl, ok := prompts[kind]
	if !ok {
		return "", fmt.Errorf("no prompt template for kind %q", kind)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ Transcript string }{Transcript: transcriptText}); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return b.String(), nil
}
