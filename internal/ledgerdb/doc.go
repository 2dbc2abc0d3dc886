// Package ledgerdb copies ledger snapshots into a SQLite database so runs can
// be inspected with ad-hoc SQL. The CSV ledger stays authoritative; every
// export appends a new snapshot and never modifies earlier ones.
package ledgerdb
