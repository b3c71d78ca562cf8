// Package textutil provides text helpers for filename and cache key
// sanitization.
//
// SanitizeKey is the single mapping from a user-supplied video name to the
// key embedded in every artifact path. HumanizeToken renders content kind
// identifiers for display.
package textutil
