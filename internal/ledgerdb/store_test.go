package ledgerdb_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"poolrecon/internal/ledger"
	"poolrecon/internal/ledgerdb"
)

func sampleLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	ok := true
	failed := false
	l := ledger.New([]string{"Group", "Sex"})
	rows := []ledger.Row{
		{Identifier: "I1", Subject: "A", RelativePath: "A/S1/x_S1_I1.nii", AcqDate: "2006-04-18", Extra: map[string]string{"Group": "CN", "Sex": "F"}},
		{Identifier: "I2", Subject: "A", RelativePath: "A/S2/x_S2_I2.nii", TimeStart: start, TimeStop: start.Add(time.Hour), Success: &ok, SessionID: "s1", Extra: map[string]string{"Group": "CN"}},
		{Identifier: "I3", Subject: "B", RelativePath: "B/S3/x_S3_I3.nii", TimeStart: start, TimeStop: start.Add(time.Minute), Success: &failed, Failure: "exit_status: 1", SessionID: "s1"},
		{Identifier: "I4", Subject: "B"},
	}
	for _, row := range rows {
		if err := l.Add(row); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return l
}

func openStore(t *testing.T, path string) *ledgerdb.Store {
	t.Helper()
	store, err := ledgerdb.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "nested", "ledger.sqlite"))
	l := sampleLedger(t)

	id, err := store.Export(ctx, l, ledgerdb.Snapshot{Source: "ds-processed.csv"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	latest, err := store.LatestExport(ctx)
	if err != nil || latest != id {
		t.Fatalf("LatestExport = %d, %v; want %d", latest, err, id)
	}

	rows, err := store.Rows(ctx, id)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	want := l.Rows()
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i := range want {
		got, exp := rows[i], want[i]
		if got.Identifier != exp.Identifier || got.RelativePath != exp.RelativePath || got.Failure != exp.Failure || got.SessionID != exp.SessionID {
			t.Fatalf("row %d = %+v, want %+v", i, got, exp)
		}
		if !got.TimeStart.Equal(exp.TimeStart) || !got.TimeStop.Equal(exp.TimeStop) {
			t.Fatalf("row %d times = %v/%v, want %v/%v", i, got.TimeStart, got.TimeStop, exp.TimeStart, exp.TimeStop)
		}
		if (got.Success == nil) != (exp.Success == nil) || (got.Success != nil && *got.Success != *exp.Success) {
			t.Fatalf("row %d success mismatch", i)
		}
	}
	if rows[0].Extra["Sex"] != "F" || rows[1].Extra["Group"] != "CN" {
		t.Fatalf("extras lost: %+v / %+v", rows[0].Extra, rows[1].Extra)
	}

	counts, err := store.StateCounts(ctx, id)
	if err != nil {
		t.Fatalf("StateCounts: %v", err)
	}
	wantCounts := map[ledger.State]int{
		ledger.StatePending:    1,
		ledger.StateSucceeded:  1,
		ledger.StateFailed:     1,
		ledger.StateUnresolved: 1,
	}
	for state, n := range wantCounts {
		if counts[state] != n {
			t.Fatalf("counts[%s] = %d, want %d (all: %v)", state, counts[state], n, counts)
		}
	}
}

func TestExportAppendsSnapshots(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.sqlite")
	store := openStore(t, path)

	first, err := store.Export(ctx, sampleLedger(t), ledgerdb.Snapshot{Source: "a.csv"})
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	_ = store.Close()

	reopened := openStore(t, path)
	second, err := reopened.Export(ctx, sampleLedger(t), ledgerdb.Snapshot{Source: "a.csv"})
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if second <= first {
		t.Fatalf("export ids not increasing: %d then %d", first, second)
	}
	rows, err := reopened.Rows(ctx, first)
	if err != nil || len(rows) != 4 {
		t.Fatalf("first snapshot rows = %d, %v", len(rows), err)
	}
}

func TestLatestExportEmpty(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "empty.sqlite"))
	if _, err := store.LatestExport(context.Background()); !errors.Is(err, ledgerdb.ErrNoExport) {
		t.Fatalf("expected ErrNoExport, got %v", err)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.sqlite")
	store := openStore(t, path)
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := ledgerdb.Open(context.Background(), path); !errors.Is(err, ledgerdb.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
