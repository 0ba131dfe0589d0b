// Package review implements the curator decision workflow for discovered
// grants: approve (optionally publishing a catalog entry), reject with a
// reason, or mark as a duplicate of an existing program. Transitions are
// one-way and guarded; reviewing an already-decided grant is a conflict.
package review
