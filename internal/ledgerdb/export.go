package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poolrecon/internal/ledger"
)

// ErrNoExport is returned when the database holds no snapshot.
var ErrNoExport = errors.New("no export found")

// Snapshot describes where an exported ledger came from.
type Snapshot struct {
	Source string
	At     time.Time
	// SessionID classifies started rows; pass ledger.LiveSessions when a run
	// holds the ledger lock.
	SessionID string
}

// Export copies every row of l into a new snapshot and returns its id.
func (s *Store) Export(ctx context.Context, l *ledger.Ledger, snap Snapshot) (int64, error) {
	if snap.At.IsZero() {
		snap.At = time.Now()
	}
	var exportID int64
	err := retryOnBusy(ctx, func() error {
		id, err := s.exportTx(ctx, l, snap)
		exportID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return exportID, nil
}

func (s *Store) exportTx(ctx context.Context, l *ledger.Ledger, snap Snapshot) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO exports (source, exported_at, session_id, row_count) VALUES (?, ?, ?, ?)",
		snap.Source, snap.At.Format(time.RFC3339), nullString(snap.SessionID), l.Len(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert export: %w", err)
	}
	exportID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("export id: %w", err)
	}

	rowStmt, err := tx.PrepareContext(ctx, `INSERT INTO rows (
		export_id, position, identifier, subject, subject_scoped_id, relative_path, acq_date,
		description, time_start, time_stop, success, failure, session_id, state
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare row insert: %w", err)
	}
	defer rowStmt.Close()

	extraStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO row_extras (export_id, identifier, position, name, value) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare extra insert: %w", err)
	}
	defer extraStmt.Close()

	extras := l.ExtraColumns()
	for pos, row := range l.Rows() {
		if _, err := rowStmt.ExecContext(ctx,
			exportID, pos, row.Identifier, row.Subject, row.SubjectScopedID, row.RelativePath, row.AcqDate,
			row.Description, nullTime(row.TimeStart), nullTime(row.TimeStop), nullBool(row.Success),
			nullString(row.Failure), nullString(row.SessionID), string(row.State(snap.SessionID)),
		); err != nil {
			return 0, fmt.Errorf("insert row %s: %w", row.Identifier, err)
		}
		for i, name := range extras {
			value, ok := row.Extra[name]
			if !ok {
				continue
			}
			if _, err := extraStmt.ExecContext(ctx, exportID, row.Identifier, i, name, value); err != nil {
				return 0, fmt.Errorf("insert extra %s.%s: %w", row.Identifier, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit export: %w", err)
	}
	return exportID, nil
}

// LatestExport returns the id of the most recent snapshot.
func (s *Store) LatestExport(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM exports ORDER BY id DESC LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoExport
	}
	if err != nil {
		return 0, fmt.Errorf("latest export: %w", err)
	}
	return id, nil
}

// StateCounts returns row counts per state for a snapshot.
func (s *Store) StateCounts(ctx context.Context, exportID int64) (map[ledger.State]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT state, COUNT(*) FROM rows WHERE export_id = ? GROUP BY state", exportID)
	if err != nil {
		return nil, fmt.Errorf("query state counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[ledger.State]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		counts[ledger.State(state)] = n
	}
	return counts, rows.Err()
}

// Rows rebuilds the ledger rows of a snapshot in their original order.
func (s *Store) Rows(ctx context.Context, exportID int64) ([]ledger.Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identifier, subject, subject_scoped_id, relative_path,
		acq_date, description, time_start, time_stop, success, failure, session_id
		FROM rows WHERE export_id = ? ORDER BY position`, exportID)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []ledger.Row
	index := make(map[string]int)
	for rows.Next() {
		var (
			row                ledger.Row
			start, stop        sql.NullString
			success            sql.NullBool
			failure, sessionID sql.NullString
		)
		if err := rows.Scan(&row.Identifier, &row.Subject, &row.SubjectScopedID, &row.RelativePath,
			&row.AcqDate, &row.Description, &start, &stop, &success, &failure, &sessionID); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if row.TimeStart, err = parseNullTime(start); err != nil {
			return nil, err
		}
		if row.TimeStop, err = parseNullTime(stop); err != nil {
			return nil, err
		}
		if success.Valid {
			v := success.Bool
			row.Success = &v
		}
		row.Failure = failure.String
		row.SessionID = sessionID.String
		index[row.Identifier] = len(out)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	extras, err := s.db.QueryContext(ctx, "SELECT identifier, name, value FROM row_extras WHERE export_id = ?", exportID)
	if err != nil {
		return nil, fmt.Errorf("query extras: %w", err)
	}
	defer extras.Close()
	for extras.Next() {
		var id, name string
		var value sql.NullString
		if err := extras.Scan(&id, &name, &value); err != nil {
			return nil, fmt.Errorf("scan extra: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if out[i].Extra == nil {
			out[i].Extra = make(map[string]string)
		}
		out[i].Extra[name] = value.String
	}
	return out, extras.Err()
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

func nullBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullTime(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", v.String, err)
	}
	return t, nil
}
