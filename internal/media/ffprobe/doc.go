// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Inspector: runs ffprobe through an injectable Runner
//   - Result: parsed ffprobe output containing streams and format metadata
//
// The clip extractor uses Inspector.Duration to bound chapter ranges; ingest
// records stream counts and duration for status output.
package ffprobe
