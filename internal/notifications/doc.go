// Package notifications delivers curator-facing push messages via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when notifications are disabled. A
// discovery run publishes at most one summary message after completion;
// delivery failures are logged by callers and never affect pipeline state.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the simple Service interface.
package notifications
