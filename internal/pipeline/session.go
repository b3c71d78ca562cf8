package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"filmsuite/internal/clips"
	"filmsuite/internal/content"
	"filmsuite/internal/export"
	"filmsuite/internal/journal"
	"filmsuite/internal/services"
	"filmsuite/internal/timecode"
	"filmsuite/internal/transcript"
)

func newSessionID() string {
	return uuid.NewString()
}

// Session is the working state for one video. It is not safe for concurrent
// use; the artifact components below it are.
type Session struct {
	ID               string
	Asset            VideoAsset
	Transcript       transcript.Transcript
	TranscriptSource transcript.Source

	pipeline *Pipeline
	contents map[content.Kind]string
}

func (s *Session) context(ctx context.Context) context.Context {
	return services.WithVideoKey(services.WithSessionID(ctx, s.ID), s.Asset.Key)
}

// Chapters returns the transcript chapters in display order.
func (s *Session) Chapters() []transcript.Chapter {
	return s.Transcript.Chapters
}

// Markers returns the chapters as timestamp markers.
func (s *Session) Markers() []timecode.Marker {
	return s.Transcript.Markers()
}

// ExtractClip ensures the clip for the 1-based ordinal.
func (s *Session) ExtractClip(ctx context.Context, ordinal int) (clips.Clip, error) {
	ctx = s.context(ctx)
	p := s.pipeline
	started := p.now()
	clip, err := p.clips.Ensure(ctx, s.Asset.Path, s.Asset.Name, s.Transcript, ordinal)
	p.record(ctx, s.Asset, "clips", "ensure", fmt.Sprintf("chapter %d", ordinal), clipOutcome(clip), err, started)
	return clip, err
}

// ExtractAllClips ensures every chapter clip. Failures stay in their Result.
func (s *Session) ExtractAllClips(ctx context.Context) []clips.Result {
	results := make([]clips.Result, 0, len(s.Transcript.Chapters))
	for ordinal := 1; ordinal <= len(s.Transcript.Chapters); ordinal++ {
		clip, err := s.ExtractClip(ctx, ordinal)
		results = append(results, clips.Result{Ordinal: ordinal, Clip: clip, Err: err})
	}
	return results
}

// Generate resolves one content kind and mirrors present text in memory.
func (s *Session) Generate(ctx context.Context, kind content.Kind) content.Result {
	ctx = s.context(ctx)
	p := s.pipeline
	started := p.now()
	result := p.content.GetOrGenerate(ctx, s.Asset.Name, kind, s.Transcript.Text)
	if result.Present {
		s.contents[kind] = result.Text
	}
	outcome := journal.OutcomeSuccess
	if result.Source == content.SourceCache {
		outcome = journal.OutcomeCached
	}
	p.record(ctx, s.Asset, "content", "get_or_generate", string(kind), outcome, result.Err, started)
	return result
}

// GenerateAll resolves kinds in order, defaulting to every kind.
func (s *Session) GenerateAll(ctx context.Context, kinds []content.Kind) []content.Result {
	if len(kinds) == 0 {
		kinds = content.Kinds()
	}
	results := make([]content.Result, 0, len(kinds))
	for _, kind := range kinds {
		results = append(results, s.Generate(ctx, kind))
	}
	return results
}

// Regenerate discards the cached text for kind and generates it again.
func (s *Session) Regenerate(ctx context.Context, kind content.Kind) content.Result {
	delete(s.contents, kind)
	if err := s.pipeline.content.Discard(s.context(ctx), s.Asset.Name, kind); err != nil {
		return content.Result{Kind: kind, Err: err}
	}
	return s.Generate(ctx, kind)
}

// Content returns text for kind from the session mirror or the cache.
func (s *Session) Content(kind content.Kind) (string, bool, error) {
	if text, ok := s.contents[kind]; ok {
		return text, true, nil
	}
	text, found, err := s.pipeline.Content(s.Asset, kind)
	if err != nil || !found {
		return "", false, err
	}
	s.contents[kind] = text
	return text, true, nil
}

// Export packages every artifact currently on disk.
func (s *Session) Export(ctx context.Context) (export.Package, error) {
	return s.pipeline.Export(s.context(ctx), s.Asset)
}

// Status reports artifact presence for the session's video.
func (s *Session) Status() (Status, error) {
	return s.pipeline.Status(s.Asset)
}

func clipOutcome(clip clips.Clip) string {
	if clip.Source == clips.SourceCache {
		return journal.OutcomeCached
	}
	return journal.OutcomeSuccess
}
