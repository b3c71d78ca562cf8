package clips

import (
	"context"
	"fmt"
	"log/slog"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/logging"
	"filmsuite/internal/services"
	"filmsuite/internal/transcript"
)

// Source reports whether a clip came from the cache or a fresh extraction.
type Source string

const (
	SourceCache     Source = "cache"
	SourceExtracted Source = "extracted"
)

// Clip is a chapter clip available on disk.
type Clip struct {
	Ordinal int
	Path    string
	Chapter transcript.Chapter
	Source  Source
}

// Result is the outcome for one chapter of EnsureAll.
type Result struct {
	Ordinal int
	Clip    Clip
	Err     error
}

// ChapterExtractor is satisfied by *Extractor.
type ChapterExtractor interface {
	Extract(ctx context.Context, videoPath string, chapter transcript.Chapter, outputPath string) error
}

// Cache serves clips from the chapters directory, extracting on a miss.
type Cache struct {
	layout    artifacts.Layout
	locker    *artifacts.Locker
	extractor ChapterExtractor
	logger    *slog.Logger
}

// NewCache constructs a clip cache.
func NewCache(layout artifacts.Layout, locker *artifacts.Locker, extractor ChapterExtractor, logger *slog.Logger) *Cache {
	return &Cache{
		layout:    layout,
		locker:    locker,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, component),
	}
}

// Ensure returns the clip for the 1-based ordinal, extracting it when no
// clip exists yet. An ordinal outside the transcript's chapters is marked
// services.ErrExtractionFailed and services.ErrNotFound.
func (c *Cache) Ensure(ctx context.Context, videoPath, videoName string, tr transcript.Transcript, ordinal int) (Clip, error) {
	chapter, ok := tr.Chapter(ordinal)
	if !ok {
		return Clip{}, services.Wrap(services.ErrExtractionFailed, component, "ensure",
			fmt.Sprintf("chapter %d of %d", ordinal, len(tr.Chapters)), services.ErrNotFound)
	}
	slot := c.layout.ClipPath(videoName, ordinal)
	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldVideoKey, artifacts.Key(videoName)),
		logging.Int(logging.FieldChapter, ordinal))

	return artifacts.Do(ctx, c.locker, slot, "ensure", func(ctx context.Context) (Clip, error) {
		clip := Clip{Ordinal: ordinal, Path: slot, Chapter: chapter}
		exists, err := artifacts.Exists(slot)
		if err != nil {
			return Clip{}, services.Wrap(services.ErrExtractionFailed, component, "ensure", "stat clip", err)
		}
		if exists {
			logger.Info("clip cache decision", logging.Args(logging.DecisionAttrs("clip_cache", "hit", "clip file present")...)...)
			clip.Source = SourceCache
			return clip, nil
		}
		logger.Info("clip cache decision", logging.Args(logging.DecisionAttrs("clip_cache", "miss", "clip file absent")...)...)
		if err := c.extractor.Extract(ctx, videoPath, chapter, slot); err != nil {
			return Clip{}, err
		}
		logger.Info("clip stored",
			logging.String(logging.FieldEventType, "clip_stored"),
			logging.String("path", slot))
		clip.Source = SourceExtracted
		return clip, nil
	})
}

// EnsureAll ensures every chapter clip in order. A failing chapter is
// reported in its Result and does not stop the rest.
func (c *Cache) EnsureAll(ctx context.Context, videoPath, videoName string, tr transcript.Transcript) []Result {
	results := make([]Result, 0, len(tr.Chapters))
	for ordinal := 1; ordinal <= len(tr.Chapters); ordinal++ {
		if ctx.Err() != nil {
			results = append(results, Result{Ordinal: ordinal, Err: services.Wrap(services.ErrExtractionFailed, component, "ensure", "cancelled", ctx.Err())})
			continue
		}
		clip, err := c.Ensure(ctx, videoPath, videoName, tr, ordinal)
		if err != nil {
			logging.WarnWithContext(c.logger, "clip extraction failed", "clip_failed",
				logging.Int(logging.FieldChapter, ordinal),
				logging.String(logging.FieldVideoKey, artifacts.Key(videoName)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "retry this chapter after checking ffmpeg output"),
				logging.String(logging.FieldImpact, "this chapter has no clip"))
		}
		results = append(results, Result{Ordinal: ordinal, Clip: clip, Err: err})
	}
	return results
}

// Available lists clip ordinals already on disk for videoName.
func (c *Cache) Available(videoName string) ([]int, error) {
	files, err := c.layout.ListClips(videoName)
	if err != nil {
		return nil, err
	}
	ordinals := make([]int, 0, len(files))
	for _, file := range files {
		ordinals = append(ordinals, file.Ordinal)
	}
	return ordinals, nil
}
