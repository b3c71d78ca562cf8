package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"filmsuite/internal/config"
)

func TestLoadDefaultConfigDerivesDirectoriesFromDataDir(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-key")
	t.Setenv("FILMSUITE_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "filmsuite")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	checks := map[string]string{
		"uploads":     cfg.Paths.UploadsDir,
		"chapters":    cfg.Paths.ChaptersDir,
		"transcripts": cfg.Paths.TranscriptsDir,
		"generated":   cfg.Paths.GeneratedDir,
		"exports":     cfg.Paths.ExportsDir,
		"logs":        cfg.Paths.LogDir,
	}
	for name, got := range checks {
		if want := filepath.Join(wantData, name); got != want {
			t.Fatalf("unexpected %s dir: got %q want %q", name, got, want)
		}
	}
	if cfg.Journal.Path != filepath.Join(wantData, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if cfg.Transcription.APIKey != "aai-key" {
		t.Fatalf("expected transcription key from env, got %q", cfg.Transcription.APIKey)
	}
	// An empty FILMSUITE_LLM_API_KEY is still "set", so OPENROUTER_API_KEY is not consulted.
	if cfg.LLM.APIKey != "" {
		t.Fatalf("expected empty llm key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Fatalf("unexpected max tokens: %d", cfg.LLM.MaxTokens)
	}
	if cfg.Clips.VideoCodec != "libx264" || cfg.Clips.AudioCodec != "aac" {
		t.Fatalf("unexpected codecs: %+v", cfg.Clips)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range cfg.ArtifactDirs() {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "filmsuite.toml")

	type payload struct {
		Paths struct {
			DataDir    string `toml:"data_dir"`
			ExportsDir string `toml:"exports_dir"`
		} `toml:"paths"`
		LLM struct {
			APIKey    string `toml:"api_key"`
			Model     string `toml:"model"`
			MaxTokens int    `toml:"max_tokens"`
		} `toml:"llm"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Paths.ExportsDir = filepath.Join(tempDir, "packages")
	custom.LLM.APIKey = "file-key"
	custom.LLM.Model = "custom/model"
	custom.LLM.MaxTokens = 512
	custom.Logging.Format = "JSON"

	encoded, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.ExportsDir != filepath.Join(tempDir, "packages") {
		t.Fatalf("unexpected exports dir: %q", cfg.Paths.ExportsDir)
	}
	if cfg.Paths.ChaptersDir != filepath.Join(tempDir, "data", "chapters") {
		t.Fatalf("unexpected chapters dir: %q", cfg.Paths.ChaptersDir)
	}
	if cfg.LLM.APIKey != "file-key" || cfg.LLM.Model != "custom/model" || cfg.LLM.MaxTokens != 512 {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	content := "[transcription]\nbase_url = \"ftp://example.com\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected invalid base_url error")
	}
	if !strings.Contains(err.Error(), "transcription.base_url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireTranscription(); err == nil {
		t.Fatal("expected missing transcription key error")
	}
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected missing llm key error")
	}
	cfg.Transcription.APIKey = "a"
	cfg.LLM.APIKey = "b"
	if err := cfg.RequireTranscription(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample config failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Transcription.PollIntervalSeconds != 3 {
		t.Fatalf("unexpected poll interval: %d", cfg.Transcription.PollIntervalSeconds)
	}
}
