package clips

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/logging"
	"filmsuite/internal/media/ffmpeg"
	"filmsuite/internal/services"
	"filmsuite/internal/timecode"
	"filmsuite/internal/transcript"
)

const (
	component = "clips"
	// durationToleranceMS absorbs rounding between the chapter end reported by
	// the transcription service and the container duration reported by ffprobe.
	durationToleranceMS = 1
)

// Prober reports the duration of a media file.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Cutter re-encodes a time range of a media file.
type Cutter interface {
	Cut(ctx context.Context, cut ffmpeg.Cut) error
}

// Codecs selects the output encoders.
type Codecs struct {
	Video string
	Audio string
}

// Extractor cuts a single chapter range out of a source video.
type Extractor struct {
	prober Prober
	cutter Cutter
	codecs Codecs
	logger *slog.Logger
}

// NewExtractor constructs an extractor.
func NewExtractor(prober Prober, cutter Cutter, codecs Codecs, logger *slog.Logger) *Extractor {
	return &Extractor{
		prober: prober,
		cutter: cutter,
		codecs: codecs,
		logger: logging.NewComponentLogger(logger, component),
	}
}

// Extract writes the chapter range of videoPath to outputPath, replacing any
// existing file. Every failure is marked services.ErrExtractionFailed and
// leaves outputPath as it was.
func (e *Extractor) Extract(ctx context.Context, videoPath string, chapter transcript.Chapter, outputPath string) error {
	fail := func(message string, err error) error {
		return services.Wrap(services.ErrExtractionFailed, component, "extract", message, err)
	}

	info, err := os.Stat(videoPath)
	if err != nil {
		return fail("source unreadable", err)
	}
	if !info.Mode().IsRegular() {
		return fail(fmt.Sprintf("source %s is not a regular file", videoPath), nil)
	}
	if chapter.Start < 0 || chapter.End <= chapter.Start {
		return fail(fmt.Sprintf("invalid chapter range %d-%d ms", chapter.Start, chapter.End), nil)
	}
	duration, err := e.prober.Duration(ctx, videoPath)
	if err != nil {
		return fail("probe source duration", err)
	}
	if chapter.End > duration.Milliseconds()+durationToleranceMS {
		return fail(fmt.Sprintf("chapter ends at %s beyond source duration %s",
			timecode.ToTimecode(chapter.End), timecode.ToTimecode(duration.Milliseconds())), nil)
	}

	start := time.Now()
	err = artifacts.ReplaceFile(outputPath, func(tmpPath string) error {
		if err := e.cutter.Cut(ctx, ffmpeg.Cut{
			Input:      videoPath,
			Output:     tmpPath,
			Start:      timecode.ToSeconds(chapter.Start),
			Duration:   timecode.ToSeconds(chapter.End - chapter.Start),
			VideoCodec: e.codecs.Video,
			AudioCodec: e.codecs.Audio,
		}); err != nil {
			return err
		}
		produced, err := os.Stat(tmpPath)
		if err != nil {
			return fmt.Errorf("stat clip output: %w", err)
		}
		if produced.Size() == 0 {
			return fmt.Errorf("ffmpeg produced an empty clip")
		}
		return nil
	})
	if err != nil {
		return fail("cut chapter range", err)
	}
	e.logger.Debug("clip extracted",
		logging.String("output", outputPath),
		logging.String("range", timecode.ToTimecode(chapter.Start)+"-"+timecode.ToTimecode(chapter.End)),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
