// Package preflight provides readiness checks for the filesystem paths,
// environment variables and executables a recon run depends on.
//
// The recon command calls RunAll after loading configuration and before any
// worker launches. Any failed check is a configuration error: the run logs a
// critical line and exits without touching the ledger. Individual checks are
// exported so the status command can reuse them.
package preflight
