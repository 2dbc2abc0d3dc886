package reconall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"poolrecon/internal/services"
)

// terminateGrace bounds how long a canceled tool may take to exit after SIGTERM.
const terminateGrace = 30 * time.Second

// ExitError reports a tool run that finished with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ProcessError reports a tool that could not be started or was killed.
type ProcessError struct {
	Err error
}

func (e *ProcessError) Error() string {
	return "process: " + e.Err.Error()
}

func (e *ProcessError) Unwrap() error { return e.Err }

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, output io.Writer) error {
	if output == nil {
		output = io.Discard
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = terminateGrace

	if err := cmd.Start(); err != nil {
		return &ProcessError{Err: services.Wrap(services.ErrExternalTool, "reconall", "start", binary, err)}
	}
	err := cmd.Wait()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return &ExitError{Code: code}
		}
	}
	return &ProcessError{Err: err}
}
