package preflight

import (
	"context"

	"filmsuite/internal/config"
	"filmsuite/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options toggles the checks that contact remote services.
type Options struct {
	SkipRemote bool
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	dirs := []struct {
		name string
		path string
	}{
		{"Uploads directory", cfg.Paths.UploadsDir},
		{"Transcripts directory", cfg.Paths.TranscriptsDir},
		{"Chapters directory", cfg.Paths.ChaptersDir},
		{"Generated directory", cfg.Paths.GeneratedDir},
		{"Exports directory", cfg.Paths.ExportsDir},
	}
	for _, dir := range dirs {
		results = append(results, CheckDirectoryAccess(dir.name, dir.path))
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		results = append(results, binaryResult(status))
	}

	if opts.SkipRemote {
		results = append(results,
			credentialResult("AssemblyAI", cfg.RequireTranscription()),
			credentialResult("Completion LLM", cfg.RequireLLM()))
		return results
	}
	results = append(results,
		CheckAssemblyAI(ctx, cfg.Transcription.BaseURL, cfg.Transcription.APIKey),
		CheckLLM(ctx, "Completion LLM", cfg.LLM))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

func binaryResult(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	}
	return Result{Name: status.Name, Passed: status.Optional, Detail: status.Detail}
}

func credentialResult(name string, err error) Result {
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "API key configured"}
}
