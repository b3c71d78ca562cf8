package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/fileutil"
	"filmsuite/internal/logging"
	"filmsuite/internal/services"
)

// VideoAsset is an upload stored under the uploads directory.
type VideoAsset struct {
	Name string
	Key  string
	Path string
	Size int64
}

// Ingest copies sourcePath into the uploads directory, replacing any earlier
// upload with the same filename. A source that is already stored, or whose
// bytes match the stored copy, is not copied again.
func (p *Pipeline) Ingest(ctx context.Context, sourcePath string) (VideoAsset, error) {
	fail := func(marker error, message string, err error) error {
		return services.Wrap(marker, "pipeline", "ingest", message, err)
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return VideoAsset{}, fail(services.ErrValidation, "source unreadable", err)
	}
	if !info.Mode().IsRegular() {
		return VideoAsset{}, fail(services.ErrValidation, fmt.Sprintf("%s is not a regular file", sourcePath), nil)
	}
	name := artifacts.VideoName(sourcePath)
	if strings.TrimSpace(name) == "" {
		return VideoAsset{}, fail(services.ErrValidation, "cannot derive a video name from "+sourcePath, nil)
	}

	asset := VideoAsset{
		Name: name,
		Key:  artifacts.Key(name),
		Path: p.layout.UploadPath(sourcePath),
		Size: info.Size(),
	}
	same, err := fileutil.SameContent(sourcePath, asset.Path)
	if err != nil {
		return VideoAsset{}, fail(services.ErrPersistence, "compare with stored upload", err)
	}
	if same {
		p.logger.Debug("upload already stored", logging.String(logging.FieldVideoKey, asset.Key), logging.String("path", asset.Path))
		return asset, nil
	}
	if err := ctx.Err(); err != nil {
		return VideoAsset{}, err
	}
	if err := artifacts.ReplaceFile(asset.Path, func(tmp string) error {
		return fileutil.CopyFileVerified(sourcePath, tmp)
	}); err != nil {
		return VideoAsset{}, fail(services.ErrPersistence, "store upload", err)
	}
	p.logger.Info("upload stored",
		logging.String(logging.FieldEventType, "upload_stored"),
		logging.String(logging.FieldVideoKey, asset.Key),
		logging.String("path", asset.Path),
		logging.Int64("bytes", asset.Size))
	return asset, nil
}

// Find returns the stored upload for videoName.
func (p *Pipeline) Find(videoName string) (VideoAsset, error) {
	key := artifacts.Key(videoName)
	entries, err := os.ReadDir(p.layout.UploadsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return VideoAsset{}, services.Wrap(services.ErrPersistence, "pipeline", "find", "read uploads dir", err)
	}
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := entry.Name()
		if strings.TrimSuffix(base, filepath.Ext(base)) == key {
			matches = append(matches, base)
		}
	}
	if len(matches) == 0 {
		return VideoAsset{}, services.Wrap(services.ErrNotFound, "pipeline", "find", fmt.Sprintf("no stored upload for %q; ingest the video file first", videoName), nil)
	}
	sort.Strings(matches)
	path := filepath.Join(p.layout.UploadsDir, matches[0])
	info, err := os.Stat(path)
	if err != nil {
		return VideoAsset{}, services.Wrap(services.ErrPersistence, "pipeline", "find", "stat upload", err)
	}
	return VideoAsset{Name: videoName, Key: key, Path: path, Size: info.Size()}, nil
}

// Resolve ingests arg when it names a file, otherwise treats it as the name
// of a video ingested earlier.
func (p *Pipeline) Resolve(ctx context.Context, arg string) (VideoAsset, error) {
	if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
		return p.Ingest(ctx, arg)
	}
	return p.Find(artifacts.VideoName(arg))
}
