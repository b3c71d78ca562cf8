package pipeline

import (
	"context"
	"path/filepath"

	"filmsuite/internal/content"
	"filmsuite/internal/export"
	"filmsuite/internal/journal"
	"filmsuite/internal/services"
)

// Status summarizes which artifacts exist for a video.
type Status struct {
	Asset            VideoAsset
	TranscriptCached bool
	TranscriptStale  bool
	Chapters         int
	Clips            []int
	Contents         map[content.Kind]bool
	Exports          []string
}

// MissingClips lists chapter ordinals without a clip on disk.
func (s Status) MissingClips() []int {
	have := make(map[int]bool, len(s.Clips))
	for _, ordinal := range s.Clips {
		have[ordinal] = true
	}
	var missing []int
	for ordinal := 1; ordinal <= s.Chapters; ordinal++ {
		if !have[ordinal] {
			missing = append(missing, ordinal)
		}
	}
	return missing
}

// Status inspects the artifact directories without contacting any service.
func (p *Pipeline) Status(asset VideoAsset) (Status, error) {
	status := Status{Asset: asset, Contents: make(map[content.Kind]bool, len(content.Kinds()))}

	tr, found, err := p.transcripts.Load(asset.Name)
	if err != nil {
		return Status{}, err
	}
	status.TranscriptCached = found
	status.Chapters = len(tr.Chapters)
	if found && asset.Path != "" {
		stale, err := p.transcripts.Stale(asset.Path, asset.Name)
		if err != nil {
			return Status{}, err
		}
		status.TranscriptStale = stale
	}

	if status.Clips, err = p.clips.Available(asset.Name); err != nil {
		return Status{}, err
	}
	for _, kind := range content.Kinds() {
		_, present, err := p.content.Load(asset.Name, kind)
		if err != nil {
			return Status{}, err
		}
		status.Contents[kind] = present
	}
	exports, err := p.layout.ListExports(asset.Name)
	if err != nil {
		return Status{}, err
	}
	for _, path := range exports {
		status.Exports = append(status.Exports, filepath.Base(path))
	}
	return status, nil
}

// InvalidateTranscript drops the cached transcript so the next session
// transcribes again.
func (p *Pipeline) InvalidateTranscript(ctx context.Context, asset VideoAsset) error {
	return p.transcripts.Invalidate(ctx, asset.Name)
}

// Content reads cached text for kind without generating it.
func (p *Pipeline) Content(asset VideoAsset, kind content.Kind) (string, bool, error) {
	return p.content.Load(asset.Name, kind)
}

// Export packages every artifact currently on disk for asset. It needs no
// transcript and contacts no service.
func (p *Pipeline) Export(ctx context.Context, asset VideoAsset) (export.Package, error) {
	ctx = services.WithVideoKey(ctx, asset.Key)
	started := p.now()
	pkg, err := p.exports.Create(ctx, asset.Name)
	subject := ""
	if pkg.Path != "" {
		subject = filepath.Base(pkg.Path)
	}
	p.record(ctx, asset, "export", "create", subject, journal.OutcomeSuccess, err, started)
	return pkg, err
}
