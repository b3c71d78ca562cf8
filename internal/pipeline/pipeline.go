package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/clips"
	"filmsuite/internal/config"
	"filmsuite/internal/content"
	"filmsuite/internal/export"
	"filmsuite/internal/journal"
	"filmsuite/internal/logging"
	"filmsuite/internal/media/ffmpeg"
	"filmsuite/internal/media/ffprobe"
	"filmsuite/internal/services"
	"filmsuite/internal/services/assemblyai"
	"filmsuite/internal/services/llm"
	"filmsuite/internal/transcript"
)

const component = "pipeline"

// Deps carries the collaborators. A nil Transcriber or Completer leaves the
// corresponding artifacts unobtainable; cached artifacts are still served.
type Deps struct {
	Transcriber transcript.Transcriber
	Completer   content.Completer
	Prober      clips.Prober
	Cutter      clips.Cutter
	Journal     journal.Recorder
	Logger      *slog.Logger
}

// Pipeline owns the artifact components for one configuration.
type Pipeline struct {
	layout      artifacts.Layout
	transcripts *transcript.Manager
	clips       *clips.Cache
	content     *content.Orchestrator
	exports     *export.Packager
	journal     journal.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// New constructs a pipeline from normalized configuration.
func New(cfg *config.Config, deps Deps) *Pipeline {
	layout := artifacts.NewLayout(cfg)
	locker := artifacts.NewLocker(layout.LockDir)
	recorder := deps.Journal
	if recorder == nil {
		recorder = journal.Nop{}
	}
	if deps.Prober == nil {
		deps.Prober = ffprobe.NewInspector(cfg.Clips.FFprobeBinary, nil)
	}
	if deps.Cutter == nil {
		deps.Cutter = ffmpeg.New(cfg.Clips.FFmpegBinary, nil)
	}
	extractor := clips.NewExtractor(deps.Prober, deps.Cutter, clips.Codecs{
		Video: cfg.Clips.VideoCodec,
		Audio: cfg.Clips.AudioCodec,
	}, deps.Logger)
	return &Pipeline{
		layout:      layout,
		transcripts: transcript.NewManager(layout, locker, deps.Transcriber, deps.Logger),
		clips:       clips.NewCache(layout, locker, extractor, deps.Logger),
		content:     content.NewOrchestrator(layout, locker, deps.Completer, deps.Logger),
		exports:     export.NewPackager(layout, locker, deps.Logger),
		journal:     recorder,
		logger:      logging.NewComponentLogger(deps.Logger, component),
		now:         time.Now,
	}
}

// FromConfig builds a pipeline wired to the real services described by cfg.
// The returned close function releases the journal.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, func() error, error) {
	if cfg == nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, component, "init", "configuration required", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, component, "init", "create artifact directories", err)
	}

	deps := Deps{Logger: logger}
	if cfg.Transcription.APIKey != "" {
		deps.Transcriber = transcript.AssemblyAI{Client: assemblyai.NewClient(assemblyai.Config{
			APIKey:         cfg.Transcription.APIKey,
			BaseURL:        cfg.Transcription.BaseURL,
			PollInterval:   time.Duration(cfg.Transcription.PollIntervalSeconds) * time.Second,
			RequestTimeout: time.Duration(cfg.Transcription.RequestTimeoutSeconds) * time.Second,
		})}
	}
	if cfg.LLM.APIKey != "" {
		deps.Completer = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			MaxTokens:      cfg.LLM.MaxTokens,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
	}

	closer := func() error { return nil }
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrConfiguration, component, "init", "open journal", err)
		}
		deps.Journal = store
		closer = store.Close
	}
	return New(cfg, deps), closer, nil
}

// Layout exposes the artifact layout.
func (p *Pipeline) Layout() artifacts.Layout {
	return p.layout
}

// Transcript returns the transcript for an asset, transcribing on a miss.
// The error is fatal for the session only when services.IsFatal reports so.
func (p *Pipeline) Transcript(ctx context.Context, asset VideoAsset) (transcript.Transcript, transcript.Source, error) {
	started := p.now()
	tr, source, err := p.transcripts.GetOrCreate(ctx, asset.Path, asset.Name)
	outcome := journal.OutcomeSuccess
	if source == transcript.SourceCache {
		outcome = journal.OutcomeCached
	}
	p.record(ctx, asset, "transcript", "get_or_create", "", outcome, err, started)
	return tr, source, err
}

// Open stores the upload named by arg (or finds a previous one) and resolves
// its transcript. A failed transcription aborts the session; a transcript that
// could not be cached is kept in memory and the session proceeds.
func (p *Pipeline) Open(ctx context.Context, arg string) (*Session, error) {
	asset, err := p.Resolve(ctx, arg)
	if err != nil {
		return nil, err
	}
	return p.OpenAsset(ctx, asset)
}

// OpenAsset starts a session for an asset that is already stored.
func (p *Pipeline) OpenAsset(ctx context.Context, asset VideoAsset) (*Session, error) {
	id := newSessionID()
	ctx = services.WithVideoKey(services.WithSessionID(ctx, id), asset.Key)
	logger := logging.WithContext(ctx, p.logger)

	tr, source, err := p.Transcript(ctx, asset)
	if err != nil {
		if !errors.Is(err, services.ErrPersistence) || services.IsFatal(err) {
			logging.ErrorWithContext(logger, "session aborted", "session_aborted",
				logging.Error(err),
				logging.String("error_class", services.Classify(err)),
				logging.String(logging.FieldErrorHint, "check transcription credentials and retry"))
			return nil, err
		}
		logging.WarnWithContext(logger, "transcript not cached", "transcript_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the transcripts directory"),
			logging.String(logging.FieldImpact, "the next session transcribes this video again"))
	}
	logger.Info("session opened",
		logging.String(logging.FieldEventType, "session_opened"),
		logging.String("transcript_source", string(source)),
		logging.Int("chapters", len(tr.Chapters)))

	return &Session{
		ID:               id,
		Asset:            asset,
		Transcript:       tr,
		TranscriptSource: source,
		pipeline:         p,
		contents:         make(map[content.Kind]string),
	}, nil
}

func (p *Pipeline) record(ctx context.Context, asset VideoAsset, comp, operation, subject, outcome string, err error, started time.Time) {
	detail := ""
	if err != nil {
		detail = err.Error()
		if !errors.Is(err, services.ErrPersistence) {
			outcome = journal.OutcomeFailed
		}
	}
	sessionID, _ := services.SessionIDFromContext(ctx)
	event := journal.Event{
		SessionID: sessionID,
		VideoKey:  asset.Key,
		Component: comp,
		Operation: operation,
		Subject:   subject,
		Outcome:   outcome,
		Detail:    detail,
		Duration:  p.now().Sub(started),
	}
	if recordErr := p.journal.Record(ctx, event); recordErr != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "journal write failed", "journal_write_failed",
			logging.Error(recordErr),
			logging.String("operation", fmt.Sprintf("%s.%s", comp, operation)),
			logging.String(logging.FieldImpact, "history is missing this event"))
	}
}
