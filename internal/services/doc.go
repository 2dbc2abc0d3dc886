// Package services defines shared utilities consumed by the indexer, the pool
// manager, and the external tool integration.
//
// Key responsibilities:
//   - Context helpers that stamp ledger identifiers, stage names, and run
//     session ids for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     configuration problems apart from per-job tool failures.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across commands.
package services
