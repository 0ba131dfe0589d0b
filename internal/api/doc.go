// Package api defines the JSON projections and view services shared by the
// daemon HTTP surface and the CLI. Services here are read-only; review
// mutations go through the review package.
package api
