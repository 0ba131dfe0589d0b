// Package logging builds the slog loggers used by the daemon and CLI.
//
// Two formats are supported: a human-oriented console handler that folds the
// component attribute into the line prefix and renders remaining attributes
// as key=value pairs, and a JSON handler for machine consumption. Output can
// fan out to stdout and the configured log file simultaneously.
package logging
