// Package textmatch provides the string similarity measures used by the
// deduplicator: a character-level ratio built on indel distance and an
// order-insensitive token-set ratio for program names whose word order
// varies between sources.
package textmatch
