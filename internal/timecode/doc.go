// Package timecode converts millisecond offsets into the representations the
// rest of filmsuite displays or hands to ffmpeg.
//
// ToTimecode renders HH:MM:SS with truncation to whole seconds, ToSeconds
// produces fractional seconds for clip bounds, and ChapterMarkers builds
// YouTube-style chapter lists from chapter starts. All functions are pure.
package timecode
