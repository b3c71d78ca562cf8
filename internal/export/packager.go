package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/content"
	"filmsuite/internal/logging"
	"filmsuite/internal/services"
)

const (
	component     = "export"
	clipsFolder   = "chapter_clips"
	contentFolder = "generated_content"
	readmeName    = "README.txt"
)

// Package describes a written archive.
type Package struct {
	Path       string
	CreatedAt  time.Time
	Transcript bool
	Clips      []int
	Contents   []content.Kind
	Entries    []string
}

type entry struct {
	source  string
	name    string
	deflate bool
}

// Packager writes export archives.
type Packager struct {
	layout artifacts.Layout
	locker *artifacts.Locker
	logger *slog.Logger
	now    func() time.Time
}

// NewPackager constructs a packager.
func NewPackager(layout artifacts.Layout, locker *artifacts.Locker, logger *slog.Logger) *Packager {
	return &Packager{
		layout: layout,
		locker: locker,
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
}

// Create writes a new archive of every artifact currently on disk for
// videoName. Filesystem failures are marked services.ErrPackagingFailed.
func (p *Packager) Create(ctx context.Context, videoName string) (Package, error) {
	if strings.TrimSpace(videoName) == "" {
		return Package{}, services.Wrap(services.ErrValidation, component, "create", "video name required", nil)
	}
	slot := filepath.Join(p.layout.ExportsDir, artifacts.Key(videoName)+"_export")
	return artifacts.Do(ctx, p.locker, slot, "create", func(ctx context.Context) (Package, error) {
		return p.create(ctx, videoName)
	})
}

func (p *Packager) create(ctx context.Context, videoName string) (Package, error) {
	fail := func(message string, err error) error {
		return services.Wrap(services.ErrPackagingFailed, component, "create", message, err)
	}

	created := p.now()
	pkg := Package{CreatedAt: created}
	entries, err := p.collect(videoName, &pkg)
	if err != nil {
		return Package{}, fail("collect artifacts", err)
	}

	target, err := p.layout.NextExportPath(videoName, created)
	if err != nil {
		return Package{}, fail("choose archive name", err)
	}
	readme := manifest(videoName, created, entries)

	err = artifacts.WriteAtomic(target, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := addFile(zw, e, created); err != nil {
				return err
			}
		}
		if err := addBytes(zw, readmeName, []byte(readme), created); err != nil {
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return Package{}, fail("write archive", err)
	}

	pkg.Path = target
	for _, e := range entries {
		pkg.Entries = append(pkg.Entries, e.name)
	}
	pkg.Entries = append(pkg.Entries, readmeName)
	p.logger.Info("export created",
		logging.String(logging.FieldEventType, "export_created"),
		logging.String(logging.FieldVideoKey, artifacts.Key(videoName)),
		logging.String("path", target),
		logging.Bool("transcript", pkg.Transcript),
		logging.Int("clips", len(pkg.Clips)),
		logging.Int("contents", len(pkg.Contents)))
	return pkg, nil
}

func (p *Packager) collect(videoName string, pkg *Package) ([]entry, error) {
	var entries []entry

	transcriptPath := p.layout.TranscriptPath(videoName)
	ok, err := artifacts.Exists(transcriptPath)
	if err != nil {
		return nil, err
	}
	if ok {
		pkg.Transcript = true
		entries = append(entries, entry{source: transcriptPath, name: filepath.Base(transcriptPath), deflate: true})
	}

	clips, err := p.layout.ListClips(videoName)
	if err != nil {
		return nil, err
	}
	for _, clip := range clips {
		pkg.Clips = append(pkg.Clips, clip.Ordinal)
		entries = append(entries, entry{source: clip.Path, name: path.Join(clipsFolder, filepath.Base(clip.Path))})
	}

	for _, kind := range content.Kinds() {
		contentPath := p.layout.ContentPath(videoName, string(kind))
		ok, err := content.Present(contentPath)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		pkg.Contents = append(pkg.Contents, kind)
		entries = append(entries, entry{source: contentPath, name: path.Join(contentFolder, filepath.Base(contentPath)), deflate: true})
	}
	return entries, nil
}

// addFile copies one artifact into the archive. Clips are already compressed
// and are stored as-is.
func addFile(zw *zip.Writer, e entry, modified time.Time) error {
	f, err := os.Open(e.source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s disappeared during export: %w", filepath.Base(e.source), err)
		}
		return err
	}
	defer f.Close()

	method := zip.Store
	if e.deflate {
		method = zip.Deflate
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method, Modified: modified})
	if err != nil {
		return fmt.Errorf("add %s: %w", e.name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy %s: %w", e.name, err)
	}
	return nil
}

func addBytes(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}
