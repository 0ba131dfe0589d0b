// Package services defines the shared error taxonomy used across the
// discovery pipeline and the review surface.
//
// Errors are tagged with sentinel markers (configuration, validation,
// not-found, conflict, transient) so callers can classify failures with
// errors.Is without inspecting message text. The admin API maps markers to
// HTTP status codes via HTTPStatus; the orchestrator records per-source and
// per-item failures in the run error log instead of propagating them.
package services
