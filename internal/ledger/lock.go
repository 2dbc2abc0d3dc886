package ledger

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock is an advisory lock held beside a ledger file for the length of a run.
type Lock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for the ledger at path.
func LockPath(ledgerPath string) string {
	return ledgerPath + ".lock"
}

// Acquire takes the ledger lock without blocking. It fails with
// ErrLedgerLocked when another process already holds it.
func Acquire(ledgerPath string) (*Lock, error) {
	path := LockPath(ledgerPath)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLedgerLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// IsLocked reports whether some run currently holds the ledger lock.
func IsLocked(ledgerPath string) (bool, error) {
	fl := flock.New(LockPath(ledgerPath))
	ok, err := fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe ledger lock: %w", err)
	}
	if !ok {
		return true, nil
	}
	return false, fl.Unlock()
}
