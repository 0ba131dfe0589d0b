// Package discovery orchestrates grant discovery runs: it sequences source
// adapters, extracts and scores candidates, matches them against a catalog
// snapshot, and persists results with per-source commit durability. A source
// or item failure is recorded in the run's error log and never aborts the
// run; only adapter resolution failing outright marks a run failed.
package discovery
