// Package main hosts the poolrecon CLI entrypoint and command graph.
//
// The Cobra command tree covers the two batch steps (index a dataset into a
// ledger, then run the external analysis over it) plus ledger inspection,
// export, reset, and configuration scaffolding. Configuration resolution and
// logger construction live here; the work itself belongs to the internal
// packages.
package main
