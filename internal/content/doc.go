// Package content generates and caches the four text artifacts derived from a
// transcript: summary, target audience analysis, discussion guide and social
// media posts.
//
// Each (video, kind) slot moves from unset to cached exactly once. A cached
// slot is served from disk without contacting the completion service, so a
// video costs at most one completion request per kind. A failed completion
// leaves the slot unset and is reported in the Result rather than returned as
// a Go error, so one kind failing never stops the others.
package content
