// Package ledger persists per-item processing state in a CSV file and exposes
// helpers for driving each row through its lifecycle.
//
// A Ledger is an ordered, identifier-keyed set of rows loaded fully into
// memory. Save rewrites the whole file atomically (temp file + rename), and
// Acquire takes an advisory lock beside the file so only one pool run owns a
// ledger at a time. Eligibility rules live here so the indexer, the pool
// manager, and the status command agree on what "not yet attempted" means.
//
// Treat this package as the single source of truth for ledger semantics; when
// you add a column, update canonicalColumns and the alias table in csv.go.
package ledger
