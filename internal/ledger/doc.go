// Package ledger persists discovery state in SQLite: discovered grant
// candidates awaiting review, the runs that produced them, and the program
// catalog schema they resolve against. The store is safe for concurrent use
// from the daemon and CLI; writes retry on transient lock contention.
package ledger
