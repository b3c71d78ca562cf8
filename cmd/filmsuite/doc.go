// Package main hosts the filmsuite CLI entrypoint and command graph.
//
// Each video command opens a pipeline session for one film: the upload is
// stored, its transcript resolved, and the requested artifacts produced or
// served from the cache. Configuration resolution, logger construction and
// pipeline wiring happen once per invocation in commandContext so the
// subcommands only deal with arguments and output.
package main
