package artifacts_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"filmsuite/internal/artifacts"
)

func newLayout(t *testing.T) artifacts.Layout {
	t.Helper()
	base := t.TempDir()
	return artifacts.Layout{
		UploadsDir:     filepath.Join(base, "uploads"),
		TranscriptsDir: filepath.Join(base, "transcripts"),
		ChaptersDir:    filepath.Join(base, "chapters"),
		GeneratedDir:   filepath.Join(base, "generated"),
		ExportsDir:     filepath.Join(base, "exports"),
		LockDir:        filepath.Join(base, ".locks"),
	}
}

func TestLayoutPaths(t *testing.T) {
	layout := newLayout(t)

	if got := layout.TranscriptPath("river_story"); got != filepath.Join(layout.TranscriptsDir, "river_story_transcript.json") {
		t.Fatalf("unexpected transcript path %q", got)
	}
	if got := layout.ClipPath("river_story", 3); got != filepath.Join(layout.ChaptersDir, "chapter_3_river_story.mp4") {
		t.Fatalf("unexpected clip path %q", got)
	}
	if got := layout.ContentPath("river_story", "summary"); got != filepath.Join(layout.GeneratedDir, "river_story_summary.txt") {
		t.Fatalf("unexpected content path %q", got)
	}
	ts := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	if got := layout.ExportPath("river_story", ts); got != filepath.Join(layout.ExportsDir, "river_story_export_20240501_130405.zip") {
		t.Fatalf("unexpected export path %q", got)
	}
	if got := layout.UploadPath("/tmp/in/river_story.MP4"); got != filepath.Join(layout.UploadsDir, "river_story.mp4") {
		t.Fatalf("unexpected upload path %q", got)
	}
}

func TestLayoutPathsAreSingleSegments(t *testing.T) {
	layout := newLayout(t)
	name := "../../etc/passwd"
	for _, path := range []string{
		layout.TranscriptPath(name),
		layout.ClipPath(name, 1),
		layout.ContentPath(name, "summary"),
	} {
		dir := filepath.Dir(path)
		if dir != layout.TranscriptsDir && dir != layout.ChaptersDir && dir != layout.GeneratedDir {
			t.Fatalf("path %q escaped its artifact directory", path)
		}
	}
}

func TestVideoName(t *testing.T) {
	cases := map[string]string{
		"river_story.mp4":    "river_story",
		"/uploads/a.b.mp4":   "a.b",
		"  spaced name.mov ": "spaced name",
		"noext":              "noext",
	}
	for input, want := range cases {
		if got := artifacts.VideoName(input); got != want {
			t.Fatalf("VideoName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseClipOrdinalRoundTrip(t *testing.T) {
	for _, name := range []string{"river_story", "My Film: Part 2", "b"} {
		for _, ordinal := range []int{1, 7, 42} {
			got, ok := artifacts.ParseClipOrdinal(name, artifacts.ClipFileName(name, ordinal))
			if !ok || got != ordinal {
				t.Fatalf("round trip %q/%d: got %d ok=%v", name, ordinal, got, ok)
			}
		}
	}
}

func TestParseClipOrdinalRejectsOtherFiles(t *testing.T) {
	cases := []string{
		"chapter__b.mp4",
		"chapter_x_b.mp4",
		"chapter_1_a_b.mp4",
		"chapter_0_b.mp4",
		"chapter_1_b.mov",
		"b_summary.txt",
	}
	for _, filename := range cases {
		if ordinal, ok := artifacts.ParseClipOrdinal("b", filename); ok {
			t.Fatalf("ParseClipOrdinal(b, %q) = %d, expected rejection", filename, ordinal)
		}
	}
}

func TestListClipsOrdersByOrdinal(t *testing.T) {
	layout := newLayout(t)
	if clips, err := layout.ListClips("film"); err != nil || clips != nil {
		t.Fatalf("expected no clips for missing dir, got %v %v", clips, err)
	}
	if err := os.MkdirAll(layout.ChaptersDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"chapter_10_film.mp4", "chapter_2_film.mp4", "chapter_1_other.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(layout.ChaptersDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	clips, err := layout.ListClips("film")
	if err != nil {
		t.Fatalf("ListClips: %v", err)
	}
	want := []artifacts.ClipFile{
		{Ordinal: 2, Path: filepath.Join(layout.ChaptersDir, "chapter_2_film.mp4")},
		{Ordinal: 10, Path: filepath.Join(layout.ChaptersDir, "chapter_10_film.mp4")},
	}
	if diff := cmp.Diff(want, clips); diff != "" {
		t.Fatalf("unexpected clips (-want +got):\n%s", diff)
	}
}

func TestNextExportPathSuffixesCollisions(t *testing.T) {
	layout := newLayout(t)
	ts := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)

	first, err := layout.NextExportPath("film", ts)
	if err != nil {
		t.Fatalf("NextExportPath: %v", err)
	}
	if first != layout.ExportPath("film", ts) {
		t.Fatalf("unexpected first path %q", first)
	}
	if err := artifacts.WriteFileAtomic(first, []byte("zip")); err != nil {
		t.Fatal(err)
	}
	second, err := layout.NextExportPath("film", ts)
	if err != nil {
		t.Fatalf("NextExportPath: %v", err)
	}
	if !strings.HasSuffix(second, "film_export_20240501_130405_2.zip") {
		t.Fatalf("unexpected second path %q", second)
	}
	if err := artifacts.WriteFileAtomic(second, []byte("zip")); err != nil {
		t.Fatal(err)
	}
	exports, err := layout.ListExports("film")
	if err != nil {
		t.Fatalf("ListExports: %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("expected two exports, got %v", exports)
	}
}
