package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Ledger is an ordered set of rows keyed by identifier. It is not safe for
// concurrent use; during a pool run a single owner goroutine holds it.
type Ledger struct {
	rows         []*Row
	index        map[string]int
	extraColumns []string
}

// New returns an empty ledger that will persist the given passthrough columns
// after the canonical ones.
func New(extraColumns []string) *Ledger {
	return &Ledger{
		index:        make(map[string]int),
		extraColumns: append([]string(nil), extraColumns...),
	}
}

// Len returns the number of rows.
func (l *Ledger) Len() int {
	return len(l.rows)
}

// ExtraColumns returns the passthrough column names in file order.
func (l *Ledger) ExtraColumns() []string {
	return append([]string(nil), l.extraColumns...)
}

// Add appends a row. Identifiers must be non-empty and unique.
func (l *Ledger) Add(row Row) error {
	id := strings.TrimSpace(row.Identifier)
	if id == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidLedger)
	}
	if _, exists := l.index[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, id)
	}
	clone := row.Clone()
	clone.Identifier = id
	l.index[id] = len(l.rows)
	l.rows = append(l.rows, &clone)
	return nil
}

// Get returns a copy of the row with the given identifier.
func (l *Ledger) Get(id string) (Row, bool) {
	idx, ok := l.index[id]
	if !ok {
		return Row{}, false
	}
	return l.rows[idx].Clone(), true
}

// Rows returns copies of all rows in ledger order.
func (l *Ledger) Rows() []Row {
	out := make([]Row, 0, len(l.rows))
	for _, row := range l.rows {
		out = append(out, row.Clone())
	}
	return out
}

func (l *Ledger) lookup(id string) (*Row, error) {
	idx, ok := l.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdentifier, id)
	}
	return l.rows[idx], nil
}

// MarkStarted records time_start and the owning session for a row that is
// still eligible under policy. Starting the same row twice fails with
// ErrNotEligible.
func (l *Ledger) MarkStarted(id string, at time.Time, policy Policy) error {
	row, err := l.lookup(id)
	if err != nil {
		return err
	}
	if !row.Eligible(policy) {
		return fmt.Errorf("%w: %s is %s", ErrNotEligible, id, row.State(policy.SessionID))
	}
	row.TimeStart = at
	row.TimeStop = time.Time{}
	row.Success = nil
	row.Failure = ""
	row.SessionID = policy.SessionID
	return nil
}

// MarkStopped records time_stop and the typed outcome for a started row.
func (l *Ledger) MarkStopped(id string, at time.Time, outcome Outcome) error {
	row, err := l.lookup(id)
	if err != nil {
		return err
	}
	if !row.Started() {
		return fmt.Errorf("%w: %s has no time_start", ErrNotEligible, id)
	}
	if at.Before(row.TimeStart) {
		at = row.TimeStart
	}
	success := outcome.Succeeded()
	row.TimeStop = at
	row.Success = &success
	row.Failure = outcome.FailureText()
	return nil
}

// ResetRow clears every progress field so the row becomes eligible again.
func (l *Ledger) ResetRow(id string) error {
	row, err := l.lookup(id)
	if err != nil {
		return err
	}
	row.TimeStart = time.Time{}
	row.TimeStop = time.Time{}
	row.Success = nil
	row.Failure = ""
	row.SessionID = ""
	return nil
}
