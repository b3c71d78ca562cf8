// Package assemblyai provides a REST client for the AssemblyAI v2
// transcription API.
//
// # Flow
//
// Transcribe uploads the local media file (POST /v2/upload), submits a
// transcript job for the returned upload URL with auto_chapters and
// iab_categories enabled (POST /v2/transcript), then polls
// GET /v2/transcript/{id} until the job reports "completed" or "error".
//
// A job that finishes with status "error" is returned as a Transcript whose
// Error field is set and a nil Go error; callers decide how to treat it.
// Transport and HTTP failures are returned as errors.
//
// # Retry Behaviour
//
// Each request retries on HTTP 408/429/5xx and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default). The
// upload is only retried when the source can be reopened. Context
// cancellation aborts retries and polling immediately.
package assemblyai
