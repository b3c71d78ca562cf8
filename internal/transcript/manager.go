package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/logging"
	"filmsuite/internal/services"
)

const component = "transcript"

// Manager resolves transcripts from the cache or the transcription service.
type Manager struct {
	layout      artifacts.Layout
	locker      *artifacts.Locker
	transcriber Transcriber
	logger      *slog.Logger
}

// NewManager constructs a transcript manager.
func NewManager(layout artifacts.Layout, locker *artifacts.Locker, transcriber Transcriber, logger *slog.Logger) *Manager {
	return &Manager{
		layout:      layout,
		locker:      locker,
		transcriber: transcriber,
		logger:      logging.NewComponentLogger(logger, component),
	}
}

type outcome struct {
	transcript Transcript
	source     Source
}

// GetOrCreate returns the cached transcript for videoName, transcribing
// videoPath when none exists. A cached transcript is served even when no
// transcriber is configured. A persistence failure after a successful
// transcription returns the transcript together with an error marked
// services.ErrPersistence.
func (m *Manager) GetOrCreate(ctx context.Context, videoPath, videoName string) (Transcript, Source, error) {
	if strings.TrimSpace(videoName) == "" {
		return Transcript{}, "", services.Wrap(services.ErrValidation, component, "get", "video name required", nil)
	}
	slot := m.layout.TranscriptPath(videoName)
	logger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldVideoKey, artifacts.Key(videoName)))

	result, err := artifacts.Do(ctx, m.locker, slot, "get_or_create", func(ctx context.Context) (outcome, error) {
		cached, found, err := readTranscript(slot)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "cached transcript unreadable", "transcript_cache_corrupt",
				logging.Error(err),
				logging.String("path", slot),
				logging.String(logging.FieldErrorHint, "the file will be replaced by a fresh transcription"),
				logging.String(logging.FieldImpact, "transcription runs again for this video"))
		case found:
			logger.Info("transcript cache decision", logging.Args(logging.DecisionAttrs("transcript_cache", "hit", "cached transcript present")...)...)
			return outcome{transcript: cached, source: SourceCache}, nil
		}
		logger.Info("transcript cache decision", logging.Args(logging.DecisionAttrs("transcript_cache", "miss", "no usable cached transcript")...)...)
		if m.transcriber == nil {
			return outcome{}, services.Wrap(services.ErrConfiguration, component, "transcribe", "no transcriber configured", nil)
		}

		resp, err := m.transcriber.Transcribe(ctx, Request{AudioPath: videoPath, AutoChapters: true, Categories: true})
		if err != nil {
			return outcome{}, services.Wrap(services.ErrTranscriptionFailed, component, "transcribe", videoName, err)
		}
		if resp.Error != "" {
			return outcome{}, services.Wrap(services.ErrTranscriptionFailed, component, "transcribe", resp.Error, nil)
		}

		transcript := Normalize(Transcript{Text: resp.Text, Chapters: resp.Chapters, Categories: resp.Categories})
		out := outcome{transcript: transcript, source: SourceTranscribed}
		if err := writeTranscript(slot, transcript); err != nil {
			return out, services.Wrap(services.ErrPersistence, component, "persist", slot, err)
		}
		logger.Info("transcript stored",
			logging.String(logging.FieldEventType, "transcript_stored"),
			logging.Int("chapters", len(transcript.Chapters)),
			logging.Int("categories", len(transcript.Categories)))
		return out, nil
	})
	return result.transcript, result.source, err
}

// Load reads the cached transcript without contacting the transcription
// service. A corrupt cache file is reported as an error.
func (m *Manager) Load(videoName string) (Transcript, bool, error) {
	transcript, found, err := readTranscript(m.layout.TranscriptPath(videoName))
	if err != nil {
		return Transcript{}, false, services.Wrap(services.ErrPersistence, component, "load", videoName, err)
	}
	return transcript, found, nil
}

// Invalidate removes the cached transcript so the next GetOrCreate
// transcribes again. Removing a missing transcript is not an error.
func (m *Manager) Invalidate(ctx context.Context, videoName string) error {
	slot := m.layout.TranscriptPath(videoName)
	_, err := artifacts.Do(ctx, m.locker, slot, "invalidate", func(context.Context) (struct{}, error) {
		if err := os.Remove(slot); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return struct{}{}, services.Wrap(services.ErrPersistence, component, "invalidate", videoName, err)
		}
		return struct{}{}, nil
	})
	if err == nil {
		m.logger.Info("transcript invalidated",
			logging.String(logging.FieldEventType, "transcript_invalidated"),
			logging.String(logging.FieldVideoKey, artifacts.Key(videoName)))
	}
	return err
}

// Stale reports whether the stored upload was modified after its cached
// transcript was written.
func (m *Manager) Stale(uploadPath, videoName string) (bool, error) {
	upload, err := os.Stat(uploadPath)
	if err != nil {
		return false, err
	}
	cached, err := os.Stat(m.layout.TranscriptPath(videoName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return upload.ModTime().After(cached.ModTime()), nil
}

func readTranscript(path string) (Transcript, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Transcript{}, false, nil
		}
		return Transcript{}, false, fmt.Errorf("read transcript: %w", err)
	}
	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return Transcript{}, false, fmt.Errorf("decode transcript: %w", err)
	}
	return Normalize(transcript), true, nil
}

func writeTranscript(path string, transcript Transcript) error {
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return artifacts.WriteFileAtomic(path, append(data, '\n'))
}
