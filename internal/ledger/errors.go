package ledger

import "errors"

var (
	// ErrInvalidLedger marks a ledger file that cannot be parsed.
	ErrInvalidLedger = errors.New("invalid ledger")
	// ErrDuplicateIdentifier is returned when two rows share an identifier.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrUnknownIdentifier is returned when a mutation names a missing row.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrNotEligible is returned when a row can no longer be started.
	ErrNotEligible = errors.New("row not eligible for dispatch")
	// ErrLedgerLocked is returned when another process holds the ledger lock.
	ErrLedgerLocked = errors.New("ledger locked by another run")
)
