// Package pipeline ties the artifact components into explicit sessions.
//
// A Pipeline owns the artifact layout and one instance of each component:
// transcript manager, clip cache, content orchestrator and export packager.
// Pipeline.Open stores the upload, resolves its transcript and returns a
// Session; the transcript is the gate for everything else, so a failed
// transcription aborts the session while clip, content and export failures
// stay local to the artifact that failed. Every outcome is appended to the
// journal when one is configured.
//
// Workspace holds at most one session and replaces it when a different video
// is selected.
package pipeline
