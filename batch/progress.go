package batch

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressReporter prints a single-line progress meter as chunks commit.
// It implements Observer.
type ProgressReporter struct {
	writer         io.Writer
	total          int64
	current        int64
	reportInterval int64
	lastReported   int64
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

var _ Observer = (*ProgressReporter)(nil)

// NewProgressReporter creates a new progress reporter.
// writer: where to write progress output (typically os.Stderr)
// total: expected number of items, or 0 when unknown
// reportInterval: report progress every N items
func NewProgressReporter(writer io.Writer, total, reportInterval int64) *ProgressReporter {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressReporter{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// JobStarted begins tracking progress.
func (p *ProgressReporter) JobStarted(_ *ChunkJob) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// ChunkCompleted advances the meter to the number of items read so far.
func (p *ProgressReporter) ChunkCompleted(job *ChunkJob, _ ChunkStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = job.Read
	if p.total > 0 && p.current > p.total {
		p.current = p.total
	}

	// Report if we've crossed a report interval
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// JobFinished prints the final progress line.
func (p *ProgressReporter) JobFinished(job *ChunkJob) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = job.Read
	p.report()
	fmt.Fprintln(p.writer) // Print newline after final progress
	p.started = false
}

// Elapsed returns the time elapsed since the job started.
func (p *ProgressReporter) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startTime.IsZero() {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressReporter) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(p.current) / s
	}

	if p.total <= 0 {
		fmt.Fprintf(p.writer, "\rProgress: %d - %.1f records/s", p.current, rate)
		return
	}

	percentage := float64(p.current) / float64(p.total) * 100.0
	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f records/s",
		p.current, p.total, percentage, rate)
}
