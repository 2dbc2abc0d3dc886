// Package pool runs the ledger's dispatch set through a fixed-size worker pool.
//
// Manager.Run is the only writer of the ledger during a run. Workers never
// touch the file: they ask the owner loop to start a row, run the external
// tool, and report a typed outcome back over a channel. The owner re-checks
// eligibility against the in-memory ledger, stamps the row, saves the file
// atomically, and only then lets the worker invoke the tool, so a row's
// time_start is always on disk before its job begins.
//
// A run holds the ledger's lock file for its whole duration. Rows started by
// a different session are therefore known to be abandoned and may be
// reclaimed. On cancellation no new jobs start, running tools are terminated,
// and their rows are reset so the next run picks them up.
package pool
