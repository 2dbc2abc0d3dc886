package pool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"poolrecon/internal/ledger"
	"poolrecon/internal/logging"
	"poolrecon/internal/services"
)

// DefaultConcurrency is the pool size when none is configured.
const DefaultConcurrency = 12

const stageRecon = "recon"

// Tool runs one job and classifies how it ended.
type Tool interface {
	Process(ctx context.Context, identifier, inputPath string) ledger.Outcome
}

// Progress receives completion counts.
type Progress interface {
	Start(total, done int)
	Add(n int)
	Finish()
}

// Options configures a Manager.
type Options struct {
	LedgerPath       string
	DatasetRoot      string
	Concurrency      int
	SessionID        string
	ReclaimAbandoned bool
	Tool             Tool
	Progress         Progress
	Logger           *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result summarizes a run.
type Result struct {
	Plan       Plan
	Started    int
	Succeeded  int
	Failed     int
	Canceled   int
	Skipped    int
	Failures   map[string]ledger.Outcome
	Progressed int
}

// Manager owns one ledger for the duration of a run.
type Manager struct {
	opts   Options
	policy ledger.Policy
	logger *slog.Logger
}

// NewManager validates opts and returns a manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Tool == nil {
		return nil, errors.New("pool: tool required")
	}
	if strings.TrimSpace(opts.LedgerPath) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pool", "init", "ledger path required", nil)
	}
	if strings.TrimSpace(opts.SessionID) == "" {
		return nil, errors.New("pool: session id required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		opts: opts,
		policy: ledger.Policy{
			SessionID:        opts.SessionID,
			ReclaimAbandoned: opts.ReclaimAbandoned,
		},
		logger: logging.NewComponentLogger(opts.Logger, "pool").With(logging.String(logging.FieldSessionID, opts.SessionID)),
	}, nil
}

// event is a worker-to-owner message. A start request carries reply; a stop
// report carries outcome.
type event struct {
	identifier string
	reply      chan bool
	outcome    ledger.Outcome
	elapsed    time.Duration
}

// Run executes the dispatch set and returns once every worker has exited.
// Configuration problems are reported before any worker starts.
func (m *Manager) Run(ctx context.Context) (Result, error) {
	var result Result

	if info, err := os.Stat(m.opts.DatasetRoot); err != nil || !info.IsDir() {
		return result, services.Wrap(services.ErrConfiguration, "pool", "check dataset", m.opts.DatasetRoot+" is not a directory", err)
	}

	if _, err := os.Stat(m.opts.LedgerPath); err != nil {
		return result, services.Wrap(services.ErrNotFound, "pool", "open ledger", m.opts.LedgerPath, err)
	}

	lock, err := ledger.Acquire(m.opts.LedgerPath)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "pool", "lock ledger", m.opts.LedgerPath, err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			m.logger.Warn("release ledger lock failed", logging.Error(err))
		}
	}()

	l, err := ledger.Load(m.opts.LedgerPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, services.Wrap(services.ErrNotFound, "pool", "load ledger", m.opts.LedgerPath, err)
		}
		return result, services.Wrap(services.ErrValidation, "pool", "load ledger", m.opts.LedgerPath, err)
	}

	plan := NewPlan(l, m.policy)
	result.Plan = plan
	result.Failures = make(map[string]ledger.Outcome)
	m.logger.Info("dispatch planned",
		logging.Int("rows", plan.Total),
		logging.Int("dispatch", len(plan.Dispatch)),
		logging.Int("already_done", plan.Preseeded),
		logging.Int("reclaimed", plan.Reclaimed),
		logging.Int("unresolved", plan.Summary.Counts[ledger.StateUnresolved]),
	)
	if n := plan.Summary.Counts[ledger.StateAbandoned]; n > 0 && !m.policy.ReclaimAbandoned {
		logging.WarnWithContext(m.logger, "abandoned rows left in place", "pool_abandoned",
			logging.Int("rows", n),
			logging.String(logging.FieldImpact, "rows from an interrupted run will not be processed"),
			logging.String(logging.FieldErrorHint, "enable recon.reclaim_abandoned or run ledger reset --abandoned"),
		)
	}

	progress := m.opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	progress.Start(plan.Total, plan.Preseeded)
	result.Progressed = plan.Preseeded
	defer progress.Finish()

	if len(plan.Dispatch) == 0 {
		return result, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(m.opts.Concurrency, len(plan.Dispatch))
	jobs := make(chan ledger.Row)
	events := make(chan event)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(runCtx, jobs, events)
		}()
	}

	go func() {
		defer close(jobs)
		for _, row := range plan.Dispatch {
			select {
			case jobs <- row:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(events)
	}()

	var fatal error
	save := func() error {
		if fatal != nil {
			return fatal
		}
		if err := ledger.Save(m.opts.LedgerPath, l); err != nil {
			fatal = fmt.Errorf("save ledger: %w", err)
			logging.Critical(m.logger, "ledger save failed, aborting run", logging.Error(err))
			cancel()
			return fatal
		}
		return nil
	}

	for ev := range events {
		if ev.reply != nil {
			ev.reply <- m.start(runCtx, l, ev.identifier, save, progress, &result)
			continue
		}
		m.stop(l, ev, save, progress, &result)
	}

	if fatal != nil {
		return result, fatal
	}
	if err := ctx.Err(); err != nil {
		m.logger.Warn("run interrupted",
			logging.Int("finished", result.Succeeded+result.Failed),
			logging.Int("reset", result.Canceled),
		)
		return result, err
	}
	m.logger.Info("run complete",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed),
		logging.Int("progress", result.Progressed),
	)
	return result, nil
}

// start handles a worker's start request on the owner goroutine.
func (m *Manager) start(ctx context.Context, l *ledger.Ledger, id string, save func() error, progress Progress, result *Result) bool {
	if ctx.Err() != nil {
		return false
	}
	if err := l.MarkStarted(id, m.opts.Now(), m.policy); err != nil {
		m.logger.Warn("row no longer eligible, skipping", logging.Identifier(id), logging.Error(err))
		result.Skipped++
		progress.Add(1)
		result.Progressed++
		return false
	}
	if err := save(); err != nil {
		_ = l.ResetRow(id)
		return false
	}
	result.Started++
	m.logger.Debug("job started", logging.Identifier(id))
	return true
}

// stop applies a worker's outcome on the owner goroutine.
func (m *Manager) stop(l *ledger.Ledger, ev event, save func() error, progress Progress, result *Result) {
	logger := m.logger.With(logging.Identifier(ev.identifier))
	if ev.outcome.Kind == ledger.OutcomeCanceled {
		if err := l.ResetRow(ev.identifier); err != nil {
			logger.Error("reset canceled row failed", logging.Error(err))
			return
		}
		result.Canceled++
		if err := save(); err == nil {
			logger.Info("job canceled, row reset")
		}
		return
	}

	if err := l.MarkStopped(ev.identifier, m.opts.Now(), ev.outcome); err != nil {
		logger.Error("record outcome failed", logging.Error(err))
		return
	}
	_ = save()
	progress.Add(1)
	result.Progressed++

	if ev.outcome.Succeeded() {
		result.Succeeded++
		logger.Info("job succeeded", logging.Duration("elapsed", ev.elapsed))
		return
	}
	result.Failed++
	result.Failures[ev.identifier] = ev.outcome
	logging.WarnWithContext(logger, "job failed", "job_failed",
		logging.String("outcome", string(ev.outcome.Kind)),
		logging.String("failure", ev.outcome.FailureText()),
		logging.Duration("elapsed", ev.elapsed),
		logging.String(logging.FieldImpact, "row recorded as failed and not retried this run"),
		logging.String(logging.FieldErrorHint, "inspect the tool log, then run ledger reset --failed"),
	)
}

// work is one worker's loop. It never touches the ledger.
func (m *Manager) work(ctx context.Context, jobs <-chan ledger.Row, events chan<- event) {
	for row := range jobs {
		if ctx.Err() != nil {
			continue
		}
		reply := make(chan bool, 1)
		events <- event{identifier: row.Identifier, reply: reply}
		if !<-reply {
			continue
		}

		jobCtx := services.WithIdentifier(ctx, row.Identifier)
		jobCtx = services.WithStage(jobCtx, stageRecon)
		jobCtx = services.WithSessionID(jobCtx, m.opts.SessionID)
		logging.WithContext(jobCtx, m.logger).Info("running tool", logging.String("path", row.RelativePath))

		began := time.Now()
		outcome := m.opts.Tool.Process(jobCtx, row.Identifier, InputPath(m.opts.DatasetRoot, row.RelativePath))
		if ctx.Err() != nil && !outcome.Succeeded() && outcome.Kind != ledger.OutcomeCanceled {
			outcome = ledger.Outcome{Kind: ledger.OutcomeCanceled, Detail: ctx.Err().Error()}
		}
		events <- event{identifier: row.Identifier, outcome: outcome, elapsed: time.Since(began)}
	}
}

// InputPath joins a ledger relative path onto the dataset root.
func InputPath(root, relativePath string) string {
	return filepath.Join(root, filepath.FromSlash(relativePath))
}

type nopProgress struct{}

func (nopProgress) Start(int, int) {}
func (nopProgress) Add(int)        {}
func (nopProgress) Finish()        {}
