package services_test

import (
	"errors"
	"strings"
	"testing"

	"filmsuite/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtractionFailed, "clips", "extract", "chapter 2", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExtractionFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"clips", "extract", "chapter 2"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestIsFatalOnlyForTranscription(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{services.Wrap(services.ErrTranscriptionFailed, "transcript", "create", "", nil), true},
		{services.Wrap(services.ErrExtractionFailed, "clips", "extract", "", nil), false},
		{services.Wrap(services.ErrGenerationFailed, "content", "summary", "", nil), false},
		{services.Wrap(services.ErrPackagingFailed, "export", "create", "", nil), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.fatal {
			t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}

func TestClassify(t *testing.T) {
	err := services.Wrap(services.ErrGenerationFailed, "content", "generate", "social_posts", errors.New("http 500"))
	if got := services.Classify(err); got != "generation_failed" {
		t.Fatalf("unexpected classification %q", got)
	}
	if got := services.Classify(nil); got != "ok" {
		t.Fatalf("unexpected classification for nil %q", got)
	}
	if got := services.Classify(errors.New("plain")); got != "error" {
		t.Fatalf("unexpected classification for plain error %q", got)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}
