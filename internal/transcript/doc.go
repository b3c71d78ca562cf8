// Package transcript owns the per-video transcript cache.
//
// Manager.GetOrCreate is the only path that talks to the transcription
// service. A cached transcript is returned as-is; on a miss the upload is
// transcribed with auto chapters and topic categories enabled, normalized,
// and written atomically to the transcripts directory. Failures never leave a
// cache file behind, and a cache file that cannot be decoded is treated as
// absent and replaced.
//
// Transcripts are keyed by video name only. Uploading different bytes under
// the same filename keeps serving the old transcript until Invalidate is
// called; Manager.Stale reports when that may be the case.
package transcript
