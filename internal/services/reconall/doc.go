// Package reconall runs the external reconstruction tool for one image.
//
// A Client builds the tool's argument vector, routes its combined output to a
// per-job log file (or discards it), and reduces every way a run can end into
// a typed ledger.Outcome so the pool never has to inspect exec errors itself.
// Tests replace the process layer through the Executor interface.
package reconall
