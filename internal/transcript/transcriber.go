package transcript

import (
	"context"

	"filmsuite/internal/services/assemblyai"
)

// Request describes one transcription job.
type Request struct {
	AudioPath    string
	AutoChapters bool
	Categories   bool
}

// Response is the collaborator's answer. A non-empty Error means the service
// rejected the job even though the call itself succeeded.
type Response struct {
	Error      string
	Text       string
	Chapters   []Chapter
	Categories map[string]float64
}

// Transcriber is the transcription collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (Response, error)
}

// AssemblyAI adapts an AssemblyAI client to the Transcriber interface.
type AssemblyAI struct {
	Client *assemblyai.Client
}

// Transcribe uploads req.AudioPath and waits for the finished transcript.
func (a AssemblyAI) Transcribe(ctx context.Context, req Request) (Response, error) {
	job, err := a.Client.Transcribe(ctx, req.AudioPath, assemblyai.Options{
		AutoChapters:  req.AutoChapters,
		IABCategories: req.Categories,
	})
	if err != nil {
		return Response{}, err
	}
	if job.Status == assemblyai.StatusError {
		detail := job.Error
		if detail == "" {
			detail = "transcription service reported an error"
		}
		return Response{Error: detail}, nil
	}
	chapters := make([]Chapter, 0, len(job.Chapters))
	for _, ch := range job.Chapters {
		chapters = append(chapters, Chapter{
			Start:    ch.Start,
			End:      ch.End,
			Headline: ch.Headline,
			Summary:  ch.Summary,
			Gist:     ch.Gist,
		})
	}
	return Response{
		Text:       job.Text,
		Chapters:   chapters,
		Categories: job.Categories.Summary,
	}, nil
}
