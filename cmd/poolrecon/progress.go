package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"poolrecon/internal/logging"
)

// progressReporter draws a bar when w is a terminal and falls back to sampled
// log lines otherwise.
type progressReporter struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	bar     *progressbar.ProgressBar
	tty     bool
	total   int
	done    int
}

func newProgressReporter(w io.Writer, label string, logger *slog.Logger) *progressReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &progressReporter{
		w:       w,
		label:   label,
		logger:  logger,
		sampler: logging.NewProgressSampler(10),
		tty:     isTerminal(w),
	}
}

func (p *progressReporter) Start(total, done int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total, p.done = total, done
	p.sampler.Reset()
	if p.tty {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(p.label),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
		_ = p.bar.Set(done)
		return
	}
	p.logLocked()
}

func (p *progressReporter) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done += n
	if p.bar != nil {
		_ = p.bar.Add(n)
		return
	}
	p.logLocked()
}

func (p *progressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.w)
		p.bar = nil
		return
	}
	p.logger.Info(p.label+" progress finished",
		logging.Int("done", p.done),
		logging.Int("total", p.total),
	)
}

func (p *progressReporter) logLocked() {
	if !p.sampler.ShouldLogCount(p.done, p.total, p.label) {
		return
	}
	percent := 0.0
	if p.total > 0 {
		percent = float64(p.done) * 100 / float64(p.total)
	}
	p.logger.Info(p.label+" progress",
		logging.Int("done", p.done),
		logging.Int("total", p.total),
		logging.Float64("percent", percent),
	)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
