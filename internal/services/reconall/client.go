package reconall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"poolrecon/internal/ledger"
	"poolrecon/internal/services"
)

// DefaultBinary is the tool name looked up on PATH when none is configured.
const DefaultBinary = "recon-all"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, output io.Writer) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogDir keeps each job's combined output in <dir>/<identifier>.log.
func WithLogDir(dir string) Option {
	return func(c *Client) {
		c.logDir = strings.TrimSpace(dir)
	}
}

// Client wraps recon-all invocations.
type Client struct {
	binary string
	logDir string
	exec   Executor
}

// New constructs a client for the given binary.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("recon binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable name.
func (c *Client) Binary() string { return c.binary }

// Args returns the argument vector used for one image.
func Args(identifier, inputPath string) []string {
	return []string{"-all", "-subject", identifier, "-i", inputPath}
}

// Process runs the tool for identifier against inputPath and classifies the
// result. A missing input file is reported without starting the tool.
func (c *Client) Process(ctx context.Context, identifier, inputPath string) ledger.Outcome {
	if info, err := os.Stat(inputPath); err != nil || info.IsDir() {
		detail := inputPath
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			detail = err.Error()
		}
		return ledger.Outcome{Kind: ledger.OutcomeMissingInput, Detail: detail}
	}

	output, closeOutput, err := c.openOutput(ctx, identifier)
	if err != nil {
		return ledger.Outcome{Kind: ledger.OutcomeProcessError, Detail: err.Error()}
	}
	runErr := c.exec.Run(ctx, c.binary, Args(identifier, inputPath), output)
	if cerr := closeOutput(); cerr != nil && runErr == nil {
		runErr = services.Wrap(services.ErrTransient, "reconall", "close output", identifier, cerr)
	}
	return Classify(ctx, runErr)
}

func (c *Client) openOutput(ctx context.Context, identifier string) (io.Writer, func() error, error) {
	if c.logDir == "" {
		return io.Discard, func() error { return nil }, nil
	}
	if err := os.MkdirAll(c.logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create tool log dir: %w", err)
	}
	path := filepath.Join(c.logDir, logFileName(identifier))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open tool log: %w", err)
	}
	header := fmt.Sprintf("# %s %s", time.Now().Format(ledger.TimestampLayout), identifier)
	if sid, ok := services.SessionIDFromContext(ctx); ok {
		header += " session=" + sid
	}
	if _, err := fmt.Fprintln(file, header); err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write tool log: %w", err)
	}
	return file, file.Close, nil
}

func logFileName(identifier string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_")
	name := strings.TrimSpace(replacer.Replace(identifier))
	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}
	return name + ".log"
}

// Classify maps an executor error onto a ledger outcome. Once ctx is
// canceled, any failure is attributed to the cancellation rather than the tool.
func Classify(ctx context.Context, err error) ledger.Outcome {
	if err == nil {
		return ledger.Outcome{Kind: ledger.OutcomeSuccess}
	}
	if ctx != nil && ctx.Err() != nil {
		return ledger.Outcome{Kind: ledger.OutcomeCanceled, Detail: ctx.Err().Error()}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ledger.Outcome{Kind: ledger.OutcomeCanceled, Detail: err.Error()}
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return ledger.Outcome{Kind: ledger.OutcomeExitStatus, ExitCode: exitErr.Code}
	}
	return ledger.Outcome{Kind: ledger.OutcomeProcessError, Detail: err.Error()}
}
