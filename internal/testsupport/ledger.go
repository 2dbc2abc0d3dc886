package testsupport

import (
	"testing"

	"poolrecon/internal/ledger"
)

// WriteLedger saves rows as a ledger at path and returns the in-memory copy.
func WriteLedger(t testing.TB, path string, extras []string, rows ...ledger.Row) *ledger.Ledger {
	t.Helper()

	l := ledger.New(extras)
	for _, row := range rows {
		if err := l.Add(row); err != nil {
			t.Fatalf("add row %s: %v", row.Identifier, err)
		}
	}
	if err := ledger.Save(path, l); err != nil {
		t.Fatalf("save ledger %s: %v", path, err)
	}
	return l
}

// ReadLedger loads the ledger at path or fails the test.
func ReadLedger(t testing.TB, path string) *ledger.Ledger {
	t.Helper()

	l, err := ledger.Load(path)
	if err != nil {
		t.Fatalf("load ledger %s: %v", path, err)
	}
	return l
}
