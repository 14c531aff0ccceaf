// Package search implements the coordinator that maps a typed query
// descriptor — exact, prefix, fulltext, range, contains, or ids — onto the
// index plan a table exposes for it, and materializes the matching rows.
package search
