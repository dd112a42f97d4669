package batch

import (
	"log/slog"
)

// Observer receives job lifecycle events. Observers are called from the
// goroutine running the job and must not block for long. They never
// influence control flow.
type Observer interface {
	JobStarted(job *ChunkJob)
	ChunkCompleted(job *ChunkJob, stats ChunkStats)
	JobFinished(job *ChunkJob)
}

// noopObserver is a no-op implementation of Observer
type noopObserver struct{}

var _ Observer = (*noopObserver)(nil)

func (n *noopObserver) JobStarted(_ *ChunkJob)                   {}
func (n *noopObserver) ChunkCompleted(_ *ChunkJob, _ ChunkStats) {}
func (n *noopObserver) JobFinished(_ *ChunkJob)                  {}

// Observers fans events out to every member in order.
type Observers []Observer

var _ Observer = Observers(nil)

func (o Observers) JobStarted(job *ChunkJob) {
	for _, obs := range o {
		obs.JobStarted(job)
	}
}

func (o Observers) ChunkCompleted(job *ChunkJob, stats ChunkStats) {
	for _, obs := range o {
		obs.ChunkCompleted(job, stats)
	}
}

func (o Observers) JobFinished(job *ChunkJob) {
	for _, obs := range o {
		obs.JobFinished(job)
	}
}

// LogObserver logs chunk counts at debug level and a job summary at info level.
type LogObserver struct {
	Logger *slog.Logger
}

var _ Observer = (*LogObserver)(nil)

func (l *LogObserver) log() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *LogObserver) JobStarted(job *ChunkJob) {
	l.log().Info("job started", "job", job.ID, "name", job.Name)
}

func (l *LogObserver) ChunkCompleted(job *ChunkJob, stats ChunkStats) {
	l.log().Debug("chunk committed",
		"job", job.ID,
		"chunk", stats.Index,
		"read", stats.Read,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"written", stats.Written,
		"duration", stats.Duration,
	)
}

func (l *LogObserver) JobFinished(job *ChunkJob) {
	attrs := []any{
		"job", job.ID,
		"name", job.Name,
		"status", job.Status.String(),
		"read", job.Read,
		"skipped", job.Skipped,
		"failed", job.Failed,
		"written", job.Written,
		"chunks", job.Chunks,
		"duration", job.Duration(),
	}
	if job.Status == StatusFailed {
		l.log().Error("job failed", append(attrs, "err", job.Error)...)
		return
	}
	l.log().Info("job completed", attrs...)
}
