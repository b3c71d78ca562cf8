// Package preflight provides readiness checks for the artifact directories,
// the clip extraction binaries and the remote services filmsuite depends on.
//
// The CLI "filmsuite doctor" command runs RunAll and renders each Result.
// Remote checks make a single cheap request each and never retry.
package preflight
