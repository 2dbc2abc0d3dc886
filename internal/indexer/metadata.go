package indexer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"poolrecon/internal/ledger"
)

// Columns names the metadata table columns the indexer interprets.
type Columns struct {
	Identifier  string
	Subject     string
	Description string
	Date        string
	// Drop lists columns discarded from the ledger entirely.
	Drop []string
}

// Record is one row of the metadata table.
type Record struct {
	Identifier  string
	Subject     string
	Description string
	AcqDate     string
	Extra       map[string]string
}

// Table is a parsed metadata table in file order.
type Table struct {
	Records      []Record
	ExtraColumns []string
}

var acqDateLayouts = []string{"1/2/2006", "2006-01-02", "1/2/06"}

// ParseAcqDate normalizes an acquisition date to YYYY-MM-DD.
func ParseAcqDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range acqDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", value)
}

// LoadTable reads the metadata table at path. A missing file yields an error
// matching fs.ErrNotExist.
func LoadTable(path string, cols Columns) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata table: %w", err)
	}
	defer file.Close()

	table, err := DecodeTable(file, cols)
	if err != nil {
		return nil, fmt.Errorf("load metadata table %s: %w", path, err)
	}
	return table, nil
}

// DecodeTable parses a metadata table from r.
func DecodeTable(r io.Reader, cols Columns) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidTable, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: column %q appears twice", ErrInvalidTable, name)
		}
		index[name] = i
	}

	required := []string{cols.Identifier, cols.Subject, cols.Description, cols.Date}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidTable, name)
		}
	}

	var extras []string
	for _, name := range header {
		if slices.Contains(required, name) || slices.Contains(cols.Drop, name) {
			continue
		}
		if ledger.IsReservedColumn(name) {
			return nil, fmt.Errorf("%w: column %q collides with a ledger column", ErrInvalidTable, name)
		}
		extras = append(extras, name)
	}

	table := &Table{ExtraColumns: extras}
	seen := make(map[string]int)
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
		}
		rec := Record{
			Identifier:  strings.TrimSpace(fields[index[cols.Identifier]]),
			Subject:     strings.TrimSpace(fields[index[cols.Subject]]),
			Description: strings.TrimSpace(fields[index[cols.Description]]),
		}
		if rec.Identifier == "" {
			return nil, fmt.Errorf("%w: line %d: empty %s", ErrInvalidTable, line, cols.Identifier)
		}
		if first, dup := seen[rec.Identifier]; dup {
			return nil, fmt.Errorf("%w: line %d: %s %q already on line %d", ErrInvalidTable, line, cols.Identifier, rec.Identifier, first)
		}
		seen[rec.Identifier] = line
		rec.AcqDate, err = ParseAcqDate(fields[index[cols.Date]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidTable, line, err)
		}
		if len(extras) > 0 {
			rec.Extra = make(map[string]string, len(extras))
			for _, name := range extras {
				rec.Extra[name] = fields[index[name]]
			}
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}
