package ledger_test

import (
	"errors"
	"path/filepath"
	"testing"

	"poolrecon/internal/ledger"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")

	first, err := ledger.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if first.Path() != ledger.LockPath(path) {
		t.Fatalf("unexpected lock path %q", first.Path())
	}

	if _, err := ledger.Acquire(path); !errors.Is(err, ledger.ErrLedgerLocked) {
		t.Fatalf("expected ErrLedgerLocked, got %v", err)
	}
	locked, err := ledger.IsLocked(path)
	if err != nil || !locked {
		t.Fatalf("expected IsLocked=true, got %v err=%v", locked, err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	locked, err = ledger.IsLocked(path)
	if err != nil || locked {
		t.Fatalf("expected IsLocked=false after release, got %v err=%v", locked, err)
	}

	second, err := ledger.Acquire(path)
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	_ = second.Release()
}

func TestReleaseNilLock(t *testing.T) {
	var l *ledger.Lock
	if err := l.Release(); err != nil {
		t.Fatalf("expected nil release to be a no-op, got %v", err)
	}
}
