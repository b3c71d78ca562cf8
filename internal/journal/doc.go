// Package journal keeps an append-only SQLite log of pipeline outcomes.
//
// Every transcription, clip extraction, content generation and export
// records one event. The journal exists for the history command and for
// post-mortems; cache decisions never consult it, so deleting the database
// loses history but never changes what the pipeline does.
package journal
