package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"poolrecon/internal/fileutil"
)

const (
	ColumnIdentifier      = "identifier"
	ColumnSubject         = "subject"
	ColumnSubjectScopedID = "subject_scoped_id"
	ColumnRelativePath    = "relative_path"
	ColumnAcqDate         = "acq_date"
	ColumnDescription     = "description"
	ColumnTimeStart       = "time_start"
	ColumnTimeStop        = "time_stop"
	ColumnSuccess         = "success"
	ColumnFailure         = "failure"
	ColumnSessionID       = "session_id"
)

var leadingColumns = []string{
	ColumnIdentifier,
	ColumnSubject,
	ColumnSubjectScopedID,
	ColumnRelativePath,
	ColumnAcqDate,
	ColumnDescription,
}

var trailingColumns = []string{
	ColumnTimeStart,
	ColumnTimeStop,
	ColumnSuccess,
	ColumnFailure,
	ColumnSessionID,
}

// columnAliases maps lowercased header names, including the ones written by
// the older pandas-based tooling, onto canonical columns.
var columnAliases = map[string]string{
	"identifier":        ColumnIdentifier,
	"image data id":     ColumnIdentifier,
	"subject":           ColumnSubject,
	"subject_scoped_id": ColumnSubjectScopedID,
	"s id":              ColumnSubjectScopedID,
	"relative_path":     ColumnRelativePath,
	"path":              ColumnRelativePath,
	"acq_date":          ColumnAcqDate,
	"acq date":          ColumnAcqDate,
	"description":       ColumnDescription,
	"time_start":        ColumnTimeStart,
	"time_stop":         ColumnTimeStop,
	"success":           ColumnSuccess,
	"failure":           ColumnFailure,
	"session_id":        ColumnSessionID,
}

// IsReservedColumn reports whether name, or one of its legacy aliases, is a
// column the ledger manages itself.
func IsReservedColumn(name string) bool {
	_, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Header returns the column order Save writes for the given extras.
func Header(extraColumns []string) []string {
	header := make([]string, 0, len(leadingColumns)+len(extraColumns)+len(trailingColumns))
	header = append(header, leadingColumns...)
	header = append(header, extraColumns...)
	header = append(header, trailingColumns...)
	return header
}

// Load reads a ledger file. A missing file yields an error matching
// fs.ErrNotExist.
func Load(path string) (*Ledger, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	ledger, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", path, err)
	}
	return ledger, nil
}

// Decode parses ledger CSV from r.
func Decode(r io.Reader) (*Ledger, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidLedger)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidLedger, err)
	}

	canonical := make([]string, len(header))
	var extras []string
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		key, ok := columnAliases[strings.ToLower(name)]
		if !ok {
			key = name
			extras = append(extras, name)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: column %q appears twice", ErrInvalidLedger, key)
		}
		seen[key] = struct{}{}
		canonical[i] = key
	}
	if _, ok := seen[ColumnIdentifier]; !ok {
		return nil, fmt.Errorf("%w: missing %q column", ErrInvalidLedger, ColumnIdentifier)
	}

	ledger := New(extras)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLedger, err)
		}
		row, err := decodeRow(canonical, record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidLedger, line, err)
		}
		if err := ledger.Add(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return ledger, nil
}

func decodeRow(columns []string, record []string) (Row, error) {
	row := Row{}
	for i, column := range columns {
		value := strings.TrimSpace(record[i])
		var err error
		switch column {
		case ColumnIdentifier:
			row.Identifier = value
		case ColumnSubject:
			row.Subject = value
		case ColumnSubjectScopedID:
			row.SubjectScopedID = value
		case ColumnRelativePath:
			row.RelativePath = value
		case ColumnAcqDate:
			row.AcqDate = value
		case ColumnDescription:
			row.Description = value
		case ColumnTimeStart:
			row.TimeStart, err = parseTimestamp(value)
		case ColumnTimeStop:
			row.TimeStop, err = parseTimestamp(value)
		case ColumnSuccess:
			row.Success, err = parseSuccess(value)
		case ColumnFailure:
			row.Failure = value
		case ColumnSessionID:
			row.SessionID = value
		default:
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[column] = record[i]
		}
		if err != nil {
			return Row{}, fmt.Errorf("%s: %v", column, err)
		}
	}
	return row, nil
}

// Encode writes the ledger as CSV to w.
func Encode(w io.Writer, ledger *Ledger) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header(ledger.extraColumns)); err != nil {
		return err
	}
	for _, row := range ledger.rows {
		record := make([]string, 0, len(leadingColumns)+len(ledger.extraColumns)+len(trailingColumns))
		record = append(record,
			row.Identifier,
			row.Subject,
			row.SubjectScopedID,
			row.RelativePath,
			row.AcqDate,
			row.Description,
		)
		for _, column := range ledger.extraColumns {
			record = append(record, row.Extra[column])
		}
		record = append(record,
			formatTimestamp(row.TimeStart),
			formatTimestamp(row.TimeStop),
			formatSuccess(row.Success),
			row.Failure,
			row.SessionID,
		)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Save atomically replaces the ledger file at path.
func Save(path string, ledger *Ledger) error {
	var buf bytes.Buffer
	if err := Encode(&buf, ledger); err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
