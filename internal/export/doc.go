// Package export bundles whatever artifacts exist for a video into a zip.
//
// The archive holds the transcript JSON at its root, chapter clips under
// chapter_clips/, generated text under generated_content/ and a README.txt
// manifest. Missing artifacts are skipped; export never triggers generation.
// Archives are timestamped, never overwrite one another, and are published
// atomically so a failed export leaves nothing behind.
package export
