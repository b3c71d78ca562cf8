package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/content"
	"filmsuite/internal/services"
)

var fixedTime = time.Date(2024, 6, 1, 14, 30, 5, 0, time.Local)

func newTestPackager(t *testing.T) (*Packager, artifacts.Layout) {
	t.Helper()
	base := t.TempDir()
	layout := artifacts.Layout{
		TranscriptsDir: filepath.Join(base, "transcripts"),
		ChaptersDir:    filepath.Join(base, "chapters"),
		GeneratedDir:   filepath.Join(base, "generated"),
		ExportsDir:     filepath.Join(base, "exports"),
		LockDir:        filepath.Join(base, ".locks"),
	}
	p := NewPackager(layout, artifacts.NewLocker(layout.LockDir), nil)
	p.now = func() time.Time { return fixedTime }
	return p, layout
}

func write(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()
	files := make(map[string]string, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestCreateBundlesExistingArtifacts(t *testing.T) {
	p, layout := newTestPackager(t)
	write(t, layout.TranscriptPath("canyon"), `{"text":"t"}`)
	write(t, layout.ClipPath("canyon", 1), "clip-1")
	write(t, layout.ClipPath("canyon", 3), "clip-3")
	write(t, layout.ClipPath("other", 1), "other clip")
	write(t, layout.ContentPath("canyon", string(content.KindSummary)), "summary text")
	write(t, layout.ContentPath("canyon", string(content.KindSocialPosts)), "posts")

	pkg, err := p.Create(context.Background(), "canyon")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if filepath.Base(pkg.Path) != "canyon_export_20240601_143005.zip" {
		t.Fatalf("unexpected archive name %s", pkg.Path)
	}
	if !pkg.Transcript || !cmp.Equal(pkg.Clips, []int{1, 3}) {
		t.Fatalf("unexpected package summary %+v", pkg)
	}
	if diff := cmp.Diff([]content.Kind{content.KindSummary, content.KindSocialPosts}, pkg.Contents); diff != "" {
		t.Fatalf("contents mismatch (-want +got):\n%s", diff)
	}

	files := readArchive(t, pkg.Path)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{
		"README.txt",
		"canyon_transcript.json",
		"chapter_clips/chapter_1_canyon.mp4",
		"chapter_clips/chapter_3_canyon.mp4",
		"generated_content/canyon_social_posts.txt",
		"generated_content/canyon_summary.txt",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("archive entries mismatch (-want +got):\n%s", diff)
	}
	if files["chapter_clips/chapter_3_canyon.mp4"] != "clip-3" {
		t.Fatalf("clip bytes not preserved")
	}
	readme := files["README.txt"]
	for _, fragment := range []string{
		"Documentary Film Content Package",
		"Generated on: 2024-06-01 14:30:05",
		"Video: canyon",
		"- Target Audience Analysis",
		"- generated_content/canyon_summary.txt",
	} {
		if !strings.Contains(readme, fragment) {
			t.Fatalf("README missing %q:\n%s", fragment, readme)
		}
	}
}

func TestCreateSkipsEmptyContentFiles(t *testing.T) {
	p, layout := newTestPackager(t)
	write(t, layout.ContentPath("canyon", string(content.KindSummary)), "")
	write(t, layout.ContentPath("canyon", string(content.KindDiscussionGuide)), "guide")

	pkg, err := p.Create(context.Background(), "canyon")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if diff := cmp.Diff([]content.Kind{content.KindDiscussionGuide}, pkg.Contents); diff != "" {
		t.Fatalf("contents mismatch (-want +got):\n%s", diff)
	}
	files := readArchive(t, pkg.Path)
	if _, ok := files["generated_content/canyon_summary.txt"]; ok {
		t.Fatal("empty summary file was archived")
	}
	if strings.Contains(files["README.txt"], "canyon_summary.txt") {
		t.Fatalf("manifest lists the empty summary:\n%s", files["README.txt"])
	}
	if files["generated_content/canyon_discussion_guide.txt"] != "guide" {
		t.Fatalf("expected discussion guide in archive, got %v", files)
	}
}

func TestCreateWithNoArtifactsStillWritesManifest(t *testing.T) {
	p, _ := newTestPackager(t)
	pkg, err := p.Create(context.Background(), "empty")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	files := readArchive(t, pkg.Path)
	if len(files) != 1 || !strings.Contains(files["README.txt"], "(none)") {
		t.Fatalf("expected manifest only, got %v", files)
	}
}

func TestCreateSameSecondDoesNotOverwrite(t *testing.T) {
	p, _ := newTestPackager(t)
	ctx := context.Background()
	first, err := p.Create(ctx, "canyon")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Create(ctx, "canyon")
	if err != nil {
		t.Fatal(err)
	}
	if first.Path == second.Path {
		t.Fatalf("expected distinct archives, both at %s", first.Path)
	}
	if filepath.Base(second.Path) != "canyon_export_20240601_143005_2.zip" {
		t.Fatalf("unexpected collision name %s", second.Path)
	}
}

func TestCreateFailureLeavesNoArchive(t *testing.T) {
	p, layout := newTestPackager(t)
	write(t, layout.ExportsDir, "blocking file where the directory should be")

	_, err := p.Create(context.Background(), "canyon")
	if !errors.Is(err, services.ErrPackagingFailed) {
		t.Fatalf("expected ErrPackagingFailed, got %v", err)
	}
}
