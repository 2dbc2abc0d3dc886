package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"poolrecon/internal/config"
)

// LevelCritical marks failures that abort a whole run rather than a single job.
const LevelCritical = slog.LevelError + 4

// LogFileName is the file created inside the configured log directory.
const LogFileName = "poolrecon.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Output defaults to stderr.
	Output io.Writer
	// Development adds the caller to every record.
	Development bool
	SessionID   string
}

// New builds a single-handler logger writing opts.Format records to opts.Output.
func New(opts Options) (*slog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handler, err := newHandler(out, opts)
	if err != nil {
		return nil, err
	}
	return slog.New(newSessionIDHandler(handler, opts.SessionID)), nil
}

// NewWithWriters builds a logger that renders console output to console and a
// JSON copy of every record to file. Either writer may be nil.
func NewWithWriters(console, file io.Writer, opts Options) (*slog.Logger, error) {
	var handlers []slog.Handler
	if console != nil {
		h, err := newHandler(console, opts)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	if file != nil {
		jsonOpts := opts
		jsonOpts.Format = "json"
		h, err := newHandler(file, jsonOpts)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	switch len(handlers) {
	case 0:
		return NewNop(), nil
	case 1:
		return slog.New(newSessionIDHandler(handlers[0], opts.SessionID)), nil
	}
	return slog.New(newSessionIDHandler(slogmulti.Fanout(handlers...), opts.SessionID)), nil
}

// NewFromConfig creates a logger using application config defaults. Console
// output goes to stderr; when a log directory is configured every record is
// also appended as JSON to poolrecon.log. The returned cleanup closes the file.
func NewFromConfig(cfg *config.Config, sessionID string) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		logger, err := NewWithWriters(os.Stderr, nil, Options{Level: "info", Format: "console", SessionID: sessionID})
		return logger, noop, err
	}

	opts := Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		SessionID: sessionID,
	}
	if strings.TrimSpace(cfg.Paths.LogDir) == "" {
		logger, err := NewWithWriters(os.Stderr, nil, opts)
		return logger, noop, err
	}

	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return nil, noop, fmt.Errorf("ensure log directory: %w", err)
	}
	logPath := filepath.Join(cfg.Paths.LogDir, LogFileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file %s: %w", logPath, err)
	}
	logger, err := NewWithWriters(os.Stderr, file, opts)
	if err != nil {
		_ = file.Close()
		return nil, noop, err
	}
	return logger, file.Close, nil
}

// Critical logs at LevelCritical.
func Critical(logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), LevelCritical, msg, attrs...)
}

func newHandler(w io.Writer, opts Options) (slog.Handler, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	switch format {
	case "json":
		return newJSONHandler(w, levelVar, addSource), nil
	case "console":
		return newConsoleHandler(w, levelVar, addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().Format(time.RFC3339))
				}
			case slog.LevelKey:
				if lvl, ok := attr.Value.Any().(slog.Level); ok {
					attr.Value = slog.StringValue(strings.ToLower(levelLabel(lvl)))
				}
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
