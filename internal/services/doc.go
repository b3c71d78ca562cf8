// Package services defines shared utilities consumed by the pipeline
// components and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, video keys, component names,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (transcription is fatal to a session, everything else is local
//     to one artifact).
//
// Subpackages hold the HTTP clients for the transcription and completion
// services.
package services
