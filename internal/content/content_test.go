package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/services"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	replies map[string]string
	fail    map[string]error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	for marker, err := range f.fail {
		if strings.Contains(prompt, marker) {
			return "", err
		}
	}
	for marker, reply := range f.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "generic reply", nil
}

func (f *fakeCompleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func newTestOrchestrator(t *testing.T, completer Completer) (*Orchestrator, artifacts.Layout) {
	t.Helper()
	base := t.TempDir()
	layout := artifacts.Layout{
		GeneratedDir: filepath.Join(base, "generated"),
		LockDir:      filepath.Join(base, ".locks"),
	}
	return NewOrchestrator(layout, artifacts.NewLocker(layout.LockDir), completer, nil), layout
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]Kind{
		"summary":          KindSummary,
		"Target-Audience":  KindTargetAudience,
		"discussion guide": KindDiscussionGuide,
		" social_posts ":   KindSocialPosts,
	} {
		got, err := ParseKind(input)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseKind("trailer"); err == nil {
		t.Fatal("expected unknown kind error")
	}
	if KindTargetAudience.Label() != "Target Audience" {
		t.Fatalf("unexpected label %q", KindTargetAudience.Label())
	}
}

func TestRenderPromptEmbedsTranscriptVerbatim(t *testing.T) {
	text := "Line one.\n<b>Line & two</b>"
	for _, kind := range Kinds() {
		prompt, err := RenderPrompt(kind, text)
		if err != nil {
			t.Fatalf("RenderPrompt(%s): %v", kind, err)
		}
		if !strings.Contains(prompt, text) {
			t.Fatalf("%s prompt does not embed transcript verbatim:\n%s", kind, prompt)
		}
	}
	prompt, _ := RenderPrompt(KindDiscussionGuide, text)
	if !strings.Contains(prompt, "Give me 15-20 questions.") {
		t.Fatalf("unexpected discussion guide prompt:\n%s", prompt)
	}
}

func TestGetOrGenerateCachesAfterFirstSuccess(t *testing.T) {
	completer := &fakeCompleter{replies: map[string]string{"Summarize": "  A careful summary.\n"}}
	orch, layout := newTestOrchestrator(t, completer)
	ctx := context.Background()

	first := orch.GetOrGenerate(ctx, "canyon", KindSummary, "transcript text")
	want := Result{Kind: KindSummary, Text: "A careful summary.", Present: true, Source: SourceGenerated}
	if diff := cmp.Diff(want, first, cmp.Comparer(func(a, b error) bool { return a == b })); diff != "" {
		t.Fatalf("first result mismatch (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(layout.ContentPath("canyon", string(KindSummary)))
	if err != nil || string(data) != "A careful summary." {
		t.Fatalf("unexpected cache file %q, %v", data, err)
	}

	second := orch.GetOrGenerate(ctx, "canyon", KindSummary, "different transcript")
	if second.Source != SourceCache || second.Text != first.Text || second.Err != nil {
		t.Fatalf("expected cache hit, got %+v", second)
	}
	if completer.count() != 1 {
		t.Fatalf("expected one completion, got %d", completer.count())
	}
}

func TestGetOrGenerateFailureLeavesKindUnset(t *testing.T) {
	completer := &fakeCompleter{fail: map[string]error{"Summarize": errors.New("quota exceeded")}}
	orch, layout := newTestOrchestrator(t, completer)
	ctx := context.Background()

	result := orch.GetOrGenerate(ctx, "canyon", KindSummary, "text")
	if result.Present || !errors.Is(result.Err, services.ErrGenerationFailed) {
		t.Fatalf("expected absent generation failure, got %+v", result)
	}
	if _, err := os.Stat(layout.ContentPath("canyon", string(KindSummary))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no cache file, stat err %v", err)
	}

	completer.mu.Lock()
	completer.fail = nil
	completer.mu.Unlock()
	retry := orch.GetOrGenerate(ctx, "canyon", KindSummary, "text")
	if !retry.Present || retry.Source != SourceGenerated {
		t.Fatalf("expected retry to generate, got %+v", retry)
	}
	if completer.count() != 2 {
		t.Fatalf("expected two completions, got %d", completer.count())
	}
}

func TestGetOrGenerateEmptyReplyIsFailure(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &fakeCompleter{replies: map[string]string{"hashtags": "   "}})
	result := orch.GetOrGenerate(context.Background(), "canyon", KindSocialPosts, "text")
	if result.Present || !errors.Is(result.Err, services.ErrGenerationFailed) {
		t.Fatalf("expected failure for blank reply, got %+v", result)
	}
}

func TestGenerateAllIsolatesFailures(t *testing.T) {
	completer := &fakeCompleter{fail: map[string]error{"target audiences": errors.New("timeout")}}
	orch, _ := newTestOrchestrator(t, completer)

	results := orch.GenerateAll(context.Background(), "canyon", nil, "text")
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Kind == KindTargetAudience {
			if r.Present || r.Err == nil {
				t.Fatalf("expected target audience failure, got %+v", r)
			}
			continue
		}
		if !r.Present || r.Err != nil {
			t.Fatalf("expected %s to succeed, got %+v", r.Kind, r)
		}
	}
	if _, found, _ := orch.Load("canyon", KindTargetAudience); found {
		t.Fatal("failed kind must stay unset")
	}
	if text, found, err := orch.Load("canyon", KindSocialPosts); err != nil || !found || text != "generic reply" {
		t.Fatalf("Load(social_posts) = %q, %v, %v", text, found, err)
	}
}

func TestGetOrGeneratePersistFailureStillReturnsText(t *testing.T) {
	orch, layout := newTestOrchestrator(t, &fakeCompleter{})
	orch.write = func(string, []byte) error { return errors.New("disk full") }

	result := orch.GetOrGenerate(context.Background(), "canyon", KindSummary, "text")
	if !result.Present || result.Text != "generic reply" {
		t.Fatalf("expected text despite persist failure, got %+v", result)
	}
	if !errors.Is(result.Err, services.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", result.Err)
	}
	if _, err := os.Stat(layout.ContentPath("canyon", string(KindSummary))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected kind to stay uncached, stat err %v", err)
	}
}

func TestPresentTreatsEmptyFileAsUnset(t *testing.T) {
	orch, layout := newTestOrchestrator(t, &fakeCompleter{})
	path := layout.ContentPath("canyon", string(KindSummary))
	if ok, err := Present(path); err != nil || ok {
		t.Fatalf("missing file: Present = %v, %v", ok, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := Present(path); err != nil || ok {
		t.Fatalf("empty file: Present = %v, %v", ok, err)
	}
	if _, found, err := orch.Load("canyon", KindSummary); err != nil || found {
		t.Fatalf("empty file: Load found=%v err=%v", found, err)
	}
	if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := Present(path); err != nil || !ok {
		t.Fatalf("stored file: Present = %v, %v", ok, err)
	}
}

func TestDiscardAllowsRegeneration(t *testing.T) {
	completer := &fakeCompleter{}
	orch, _ := newTestOrchestrator(t, completer)
	ctx := context.Background()

	orch.GetOrGenerate(ctx, "canyon", KindSummary, "text")
	if err := orch.Discard(ctx, "canyon", KindSummary); err != nil {
		t.Fatalf("Discard returned error: %v", err)
	}
	if err := orch.Discard(ctx, "canyon", KindDiscussionGuide); err != nil {
		t.Fatalf("Discard of unset kind returned error: %v", err)
	}
	if r := orch.GetOrGenerate(ctx, "canyon", KindSummary, "text"); r.Source != SourceGenerated {
		t.Fatalf("expected regeneration, got %+v", r)
	}
	if completer.count() != 2 {
		t.Fatalf("expected two completions, got %d", completer.count())
	}
}
