package reconall

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestCommandExecutorCapturesOutput(t *testing.T) {
	sh := requireShell(t)
	var buf bytes.Buffer
	if err := (commandExecutor{}).Run(context.Background(), sh, []string{"-c", "echo out; echo err >&2"}, &buf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := buf.String(); got != "out\nerr\n" && got != "err\nout\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestCommandExecutorExitStatus(t *testing.T) {
	sh := requireShell(t)
	err := (commandExecutor{}).Run(context.Background(), sh, []string{"-c", "exit 3"}, nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("err = %v, want exit status 3", err)
	}
}

func TestCommandExecutorMissingBinary(t *testing.T) {
	err := (commandExecutor{}).Run(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, nil)
	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("err = %v, want ProcessError", err)
	}
}

func TestCommandExecutorCanceled(t *testing.T) {
	sh := requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (commandExecutor{}).Run(ctx, sh, []string{"-c", "sleep 5"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLogFileName(t *testing.T) {
	cases := map[string]string{
		"I456": "I456.log",
		"a/b":  "a_b.log",
		"..":   "unnamed.log",
		"  ":   "unnamed.log",
	}
	for in, want := range cases {
		if got := logFileName(in); got != want {
			t.Fatalf("logFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
