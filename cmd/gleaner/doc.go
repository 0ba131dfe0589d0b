// Package main hosts the gleaner CLI entrypoint and command graph.
//
// The Cobra-based command tree drives discovery runs, grant review, run and
// statistics inspection, notification testing, and configuration scaffolding.
// Commands work directly against the shared database; the discovery lock file
// keeps manual runs from overlapping with the scheduled daemon.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
