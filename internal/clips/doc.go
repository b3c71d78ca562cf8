// Package clips cuts per-chapter video clips and caches them on disk.
//
// Extractor always re-encodes the requested range. Cache is the control layer
// in front of it: a clip file that already exists at its slot is returned
// without touching ffmpeg, otherwise the clip is extracted under the slot lock
// and published atomically, so a failed extraction never leaves a partial
// file where a cached clip is expected.
package clips
