package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"filmsuite/internal/config"
	"filmsuite/internal/textutil"
)

const (
	transcriptSuffix = "_transcript.json"
	clipPrefix       = "chapter_"
	clipExtension    = ".mp4"
	contentExtension = ".txt"
	exportInfix      = "_export_"
	exportExtension  = ".zip"
	exportStampFmt   = "20060102_150405"
)

// Layout resolves artifact paths beneath the configured directories.
type Layout struct {
	UploadsDir     string
	TranscriptsDir string
	ChaptersDir    string
	GeneratedDir   string
	ExportsDir     string
	LockDir        string
}

// NewLayout builds a layout from normalized configuration.
func NewLayout(cfg *config.Config) Layout {
	return Layout{
		UploadsDir:     cfg.Paths.UploadsDir,
		TranscriptsDir: cfg.Paths.TranscriptsDir,
		ChaptersDir:    cfg.Paths.ChaptersDir,
		GeneratedDir:   cfg.Paths.GeneratedDir,
		ExportsDir:     cfg.Paths.ExportsDir,
		LockDir:        cfg.LockDir(),
	}
}

// Key returns the sanitized cache key for a video name.
func Key(videoName string) string {
	return textutil.SanitizeKey(videoName)
}

// VideoName derives a video name from an uploaded filename by dropping the
// directory and the final extension. Every artifact is keyed by this stem.
func VideoName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UploadPath is where the stored copy of an upload lives. Uploading the same
// filename again overwrites it.
func (l Layout) UploadPath(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return filepath.Join(l.UploadsDir, Key(VideoName(filename))+ext)
}

// TranscriptPath is the cache slot for a video's transcript.
func (l Layout) TranscriptPath(videoName string) string {
	return filepath.Join(l.TranscriptsDir, TranscriptFileName(videoName))
}

// TranscriptFileName is the base name of the transcript slot.
func TranscriptFileName(videoName string) string {
	return Key(videoName) + transcriptSuffix
}

// ClipPath is the cache slot for one chapter clip. Ordinals are 1-based.
func (l Layout) ClipPath(videoName string, ordinal int) string {
	return filepath.Join(l.ChaptersDir, ClipFileName(videoName, ordinal))
}

// ClipFileName is the base name of a clip slot.
func ClipFileName(videoName string, ordinal int) string {
	return clipPrefix + strconv.Itoa(ordinal) + "_" + Key(videoName) + clipExtension
}

// ParseClipOrdinal reports the chapter ordinal encoded in filename when it is
// a clip of videoName. The ordinal segment must be all digits. The video key
// is matched exactly, so "chapter_1_a_b.mp4" is never claimed by video "b".
func ParseClipOrdinal(videoName, filename string) (int, bool) {
	base := filepath.Base(filename)
	suffix := "_" + Key(videoName) + clipExtension
	if !strings.HasPrefix(base, clipPrefix) || !strings.HasSuffix(base, suffix) {
		return 0, false
	}
	middle := strings.TrimSuffix(strings.TrimPrefix(base, clipPrefix), suffix)
	if middle == "" {
		return 0, false
	}
	for _, r := range middle {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	ordinal, err := strconv.Atoi(middle)
	if err != nil || ordinal <= 0 {
		return 0, false
	}
	return ordinal, true
}

// ContentPath is the cache slot for one generated content kind.
func (l Layout) ContentPath(videoName, kind string) string {
	return filepath.Join(l.GeneratedDir, ContentFileName(videoName, kind))
}

// ContentFileName is the base name of a content slot.
func ContentFileName(videoName, kind string) string {
	return Key(videoName) + "_" + kind + contentExtension
}

// ExportPath is the archive path for an export started at ts.
func (l Layout) ExportPath(videoName string, ts time.Time) string {
	return filepath.Join(l.ExportsDir, exportBaseName(videoName, ts)+exportExtension)
}

// NextExportPath returns ExportPath, or the first free "_N" variant (N >= 2)
// when an archive from the same second already exists.
func (l Layout) NextExportPath(videoName string, ts time.Time) (string, error) {
	base := exportBaseName(videoName, ts)
	for attempt := 1; ; attempt++ {
		name := base
		if attempt > 1 {
			name = base + "_" + strconv.Itoa(attempt)
		}
		path := filepath.Join(l.ExportsDir, name+exportExtension)
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat export path: %w", err)
		}
	}
}

func exportBaseName(videoName string, ts time.Time) string {
	return Key(videoName) + exportInfix + ts.Format(exportStampFmt)
}

// ClipFile is a clip discovered on disk.
type ClipFile struct {
	Ordinal int
	Path    string
}

// ListClips returns every clip of videoName present in the chapters
// directory, ordered by ordinal. A missing directory yields no clips.
func (l Layout) ListClips(videoName string) ([]ClipFile, error) {
	entries, err := os.ReadDir(l.ChaptersDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chapters dir: %w", err)
	}
	var clips []ClipFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ordinal, ok := ParseClipOrdinal(videoName, entry.Name())
		if !ok {
			continue
		}
		clips = append(clips, ClipFile{Ordinal: ordinal, Path: filepath.Join(l.ChaptersDir, entry.Name())})
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].Ordinal < clips[j].Ordinal })
	return clips, nil
}

// ListExports returns archives for videoName, newest name last.
func (l Layout) ListExports(videoName string) ([]string, error) {
	pattern := filepath.Join(l.ExportsDir, Key(videoName)+exportInfix+"*"+exportExtension)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob exports: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Exists reports whether path names a regular file.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
