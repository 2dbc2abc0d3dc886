// Package indexer builds the initial ledger for a raw imaging dataset.
//
// A dataset directory D carries a metadata table named after itself
// (D/<basename D>.csv) and a tree of per-scan directories, each holding a
// single .nii volume. Run loads the table, drops duplicate acquisitions and
// subjects with a single visit, walks the tree once to attach each retained
// record's relative input path, and writes the ledger only after the whole
// pass succeeds.
package indexer
