package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/logging"
	"filmsuite/internal/services"
)

const component = "content"

// Completer is the text completion collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Source reports where a Result's text came from.
type Source string

const (
	SourceCache     Source = "cache"
	SourceGenerated Source = "generated"
)

// Result is the outcome of GetOrGenerate for one kind. Present is false when
// the kind is still unset; Err then explains why. A generated text whose
// persistence failed is Present with Err marked services.ErrPersistence.
type Result struct {
	Kind Kind
	// Text is the completion with surrounding whitespace removed. The cache
	// stores this trimmed form, so generated and cached results are identical.
	Text    string
	Present bool
	Source  Source
	Err     error
}

// Orchestrator serves generated content from the cache or the completer.
type Orchestrator struct {
	layout    artifacts.Layout
	locker    *artifacts.Locker
	completer Completer
	logger    *slog.Logger
	write     func(path string, data []byte) error
}

// NewOrchestrator constructs a content orchestrator.
func NewOrchestrator(layout artifacts.Layout, locker *artifacts.Locker, completer Completer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		layout:    layout,
		locker:    locker,
		completer: completer,
		logger:    logging.NewComponentLogger(logger, component),
		write:     artifacts.WriteFileAtomic,
	}
}

// GetOrGenerate returns the cached text for (videoName, kind), generating it
// from transcriptText on a miss.
func (o *Orchestrator) GetOrGenerate(ctx context.Context, videoName string, kind Kind, transcriptText string) Result {
	if _, ok := prompts[kind]; !ok {
		return Result{Kind: kind, Err: services.Wrap(services.ErrValidation, component, "generate", fmt.Sprintf("unknown kind %q", kind), nil)}
	}
	slot := o.layout.ContentPath(videoName, string(kind))
	logger := logging.WithContext(ctx, o.logger).With(
		logging.String(logging.FieldVideoKey, artifacts.Key(videoName)),
		logging.String(logging.FieldKind, string(kind)))

	result, err := artifacts.Do(ctx, o.locker, slot, "get_or_generate", func(ctx context.Context) (Result, error) {
		return o.resolve(ctx, logger, slot, kind, transcriptText), nil
	})
	if err != nil {
		return Result{Kind: kind, Err: services.Wrap(services.ErrGenerationFailed, component, "lock", slot, err)}
	}
	return result
}

func (o *Orchestrator) resolve(ctx context.Context, logger *slog.Logger, slot string, kind Kind, transcriptText string) Result {
	cached, found, err := readContent(slot)
	if err != nil {
		return Result{Kind: kind, Err: services.Wrap(services.ErrPersistence, component, "read cache", slot, err)}
	}
	if found {
		logger.Info("content cache decision", logging.Args(logging.DecisionAttrs("content_cache", "hit", "cached text present")...)...)
		return Result{Kind: kind, Text: cached, Present: true, Source: SourceCache}
	}
	logger.Info("content cache decision", logging.Args(logging.DecisionAttrs("content_cache", "miss", "no cached text")...)...)

	if o.completer == nil {
		return Result{Kind: kind, Err: services.Wrap(services.ErrGenerationFailed, component, "generate", string(kind), errors.New("no completer configured"))}
	}
	prompt, err := RenderPrompt(kind, transcriptText)
	if err != nil {
		return Result{Kind: kind, Err: services.Wrap(services.ErrGenerationFailed, component, "render prompt", string(kind), err)}
	}

	start := time.Now()
	text, err := o.completer.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("completion returned no text")
	}
	if err != nil {
		logging.WarnWithContext(logger, "content generation failed", "content_generation_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry this kind; nothing was cached"),
			logging.String(logging.FieldImpact, string(kind)+" is unavailable for this video"))
		return Result{Kind: kind, Err: services.Wrap(services.ErrGenerationFailed, component, "generate", string(kind), err)}
	}
	text = strings.TrimSpace(text)

	result := Result{Kind: kind, Text: text, Present: true, Source: SourceGenerated}
	if err := o.write(slot, []byte(text)); err != nil {
		logging.WarnWithContext(logger, "generated content not cached", "content_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions of the generated directory"),
			logging.String(logging.FieldImpact, "the text is shown once and will be regenerated next time"))
		result.Err = services.Wrap(services.ErrPersistence, component, "persist", slot, err)
		return result
	}
	logger.Info("content stored",
		logging.String(logging.FieldEventType, "content_stored"),
		logging.Int("chars", len(text)),
		logging.String("prompt_version", PromptVersion),
		logging.Duration("elapsed", time.Since(start)))
	return result
}

// GenerateAll resolves each kind in order. Failures are local to their kind.
func (o *Orchestrator) GenerateAll(ctx context.Context, videoName string, kinds []Kind, transcriptText string) []Result {
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	results := make([]Result, 0, len(kinds))
	for _, kind := range kinds {
		results = append(results, o.GetOrGenerate(ctx, videoName, kind, transcriptText))
	}
	return results
}

// Load returns cached text for (videoName, kind) without generating.
func (o *Orchestrator) Load(videoName string, kind Kind) (string, bool, error) {
	text, found, err := readContent(o.layout.ContentPath(videoName, string(kind)))
	if err != nil {
		return "", false, services.Wrap(services.ErrPersistence, component, "load", string(kind), err)
	}
	return text, found, nil
}

// Discard removes the cached text so the next GetOrGenerate asks the
// completer again. Discarding an unset kind is not an error.
func (o *Orchestrator) Discard(ctx context.Context, videoName string, kind Kind) error {
	slot := o.layout.ContentPath(videoName, string(kind))
	_, err := artifacts.Do(ctx, o.locker, slot, "discard", func(context.Context) (struct{}, error) {
		if err := os.Remove(slot); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return struct{}{}, services.Wrap(services.ErrPersistence, component, "discard", string(kind), err)
		}
		return struct{}{}, nil
	})
	return err
}

// Present reports whether path holds stored content. Like readContent it
// treats an empty file as unset.
func Present(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

// readContent treats an empty file as unset.
func readContent(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}
