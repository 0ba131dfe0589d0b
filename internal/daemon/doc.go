// Package daemon hosts the long-running gleaner process: the admin HTTP API,
// the cron scheduler that triggers discovery runs, and single-instance
// enforcement via a data-directory lock file.
package daemon
