package services_test

import (
	"errors"
	"strings"
	"testing"

	"poolrecon/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "pool", "invoke", "recon-all failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"pool", "invoke", "recon-all failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsConfiguration(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"configuration", services.Wrap(services.ErrConfiguration, "recon", "preflight", "SUBJECTS_DIR mismatch", nil), true},
		{"not found", services.Wrap(services.ErrNotFound, "recon", "ledger", "missing", nil), true},
		{"external", services.Wrap(services.ErrExternalTool, "pool", "invoke", "", nil), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := services.IsConfiguration(tc.err); got != tc.want {
			t.Fatalf("%s: IsConfiguration=%v want %v", tc.name, got, tc.want)
		}
	}
}
