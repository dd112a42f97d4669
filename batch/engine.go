package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// config holds the ambient collaborators of a run.
type config struct {
	logger   *slog.Logger
	observer Observer
	ids      IDSource
	recorder Recorder
}

// Option configures a Run.
type Option func(*config) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(observer Observer) Option {
	return func(c *config) error {
		if observer == nil {
			return nil
		}
		if existing, ok := c.observer.(Observers); ok {
			c.observer = append(existing, observer)
			return nil
		}
		c.observer = Observers{observer}
		return nil
	}
}

// WithIDSource sets where job identifiers come from.
// Default is a process-wide counter.
func WithIDSource(ids IDSource) Option {
	return func(c *config) error {
		if ids == nil {
			ids = defaultIDs
		}
		c.ids = ids
		return nil
	}
}

// WithRecorder persists every job once it reaches a terminal status.
// Recorder failures are logged and do not change the job outcome.
func WithRecorder(recorder Recorder) Option {
	return func(c *config) error {
		c.recorder = recorder
		return nil
	}
}

// Run executes step to completion and returns the terminal job.
//
// The returned job is never nil. The error is non-nil exactly when the job
// status is StatusFailed. Cancellation of ctx is only observed between
// chunks; a chunk that has started is always processed and written.
func Run[T any](ctx context.Context, step Step[T], params Parameters, opts ...Option) (*ChunkJob, error) {
	cfg := &config{
		logger:   slog.Default(),
		observer: &noopObserver{},
		ids:      defaultIDs,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return &ChunkJob{Name: step.Name, Status: StatusFailed, Error: err.Error()}, err
		}
	}

	job := &ChunkJob{
		Name:       step.Name,
		Parameters: params.Clone(),
		Status:     StatusCreated,
		CreatedAt:  time.Now(),
	}
	r := &runner[T]{cfg: cfg, job: job}

	id, err := cfg.ids.NextJobID(ctx)
	if err != nil {
		return r.fail(ctx, fmt.Errorf("failed to allocate job id: %w", err))
	}
	job.ID = id
	r.logger = cfg.logger.With("job", job.ID, "pipeline", step.Name)

	if err := step.normalize(); err != nil {
		return r.fail(ctx, err)
	}
	job.Name = step.Name
	if step.Validator != nil {
		if err := step.Validator.Validate(job.Parameters); err != nil {
			if !errors.Is(err, ErrInvalidJobParameter) {
				err = fmt.Errorf("%w: %w", ErrInvalidJobParameter, err)
			}
			return r.fail(ctx, err)
		}
	}

	d, err := newDispatcher(step.Policy, r.logger)
	if err != nil {
		return r.fail(ctx, err)
	}
	defer d.release()

	job.Status = StatusRunning
	job.StartedAt = time.Now()
	cfg.observer.JobStarted(job.Snapshot())

	for {
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, err)
		}

		start := time.Now()
		items, eof, err := r.readChunk(ctx, step.Reader, step.ChunkSize)
		if err != nil {
			return r.fail(ctx, err)
		}
		if len(items) == 0 {
			break
		}

		stats := r.processChunk(ctx, d, step.Processor, items)
		if len(stats.survivors) > 0 {
			if err := step.Writer.Write(ctx, stats.survivors); err != nil {
				return r.fail(ctx, fmt.Errorf("%w: chunk %d: %w", ErrChunkWrite, job.Chunks, err))
			}
		}

		stats.ChunkStats.Index = job.Chunks
		stats.Written = len(stats.survivors)
		stats.Duration = time.Since(start)
		job.Processed += int64(stats.Processed)
		job.Skipped += int64(stats.Skipped)
		job.Failed += int64(stats.Failed)
		job.Written += int64(stats.Written)
		job.Chunks++
		cfg.observer.ChunkCompleted(job.Snapshot(), stats.ChunkStats)

		if eof {
			break
		}
	}

	return r.complete(ctx)
}

type runner[T any] struct {
	cfg    *config
	job    *ChunkJob
	logger *slog.Logger
}

type chunkResult[T any] struct {
	ChunkStats
	survivors []T
}

// readChunk pulls up to size records. eof reports that the reader is exhausted.
func (r *runner[T]) readChunk(ctx context.Context, reader Reader[T], size int) (items []T, eof bool, err error) {
	items = make([]T, 0, size)
	for len(items) < size {
		item, err := reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			return items, true, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("%w: after %d items: %w", ErrRead, r.job.Read, err)
		}
		items = append(items, item)
		r.job.Read++
	}
	return items, false, nil
}

type itemResult[T any] struct {
	item T
	keep bool
	err  error
}

// processChunk runs the processor over items and collects the survivors.
func (r *runner[T]) processChunk(ctx context.Context, d *dispatcher, proc Processor[T], items []T) chunkResult[T] {
	results := make([]itemResult[T], len(items))
	inline := 0
	for i := range items {
		if d.submit(func() { results[i] = r.processItem(ctx, proc, items[i]) }) {
			inline++
		}
	}
	d.wait()
	if inline > 0 {
		r.logger.Debug("caller ran items under backpressure", "items", inline)
	}

	res := chunkResult[T]{
		ChunkStats: ChunkStats{Read: len(items), Processed: len(items)},
		survivors:  make([]T, 0, len(items)),
	}
	for _, ir := range results {
		switch {
		case ir.err != nil:
			res.Failed++
			r.logger.Warn("item processing failed", "chunk", r.job.Chunks, "err", ir.err)
		case !ir.keep:
			res.Skipped++
		default:
			res.survivors = append(res.survivors, ir.item)
		}
	}
	return res
}

func (r *runner[T]) processItem(ctx context.Context, proc Processor[T], item T) (res itemResult[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = itemResult[T]{err: fmt.Errorf("%w: %v", ErrProcessorPanic, p)}
		}
	}()
	out, keep, err := proc.Process(ctx, item)
	return itemResult[T]{item: out, keep: keep, err: err}
}

func (r *runner[T]) complete(ctx context.Context) (*ChunkJob, error) {
	r.job.Status = StatusCompleted
	r.finish(ctx)
	return r.job, nil
}

func (r *runner[T]) fail(ctx context.Context, err error) (*ChunkJob, error) {
	r.job.Status = StatusFailed
	r.job.Error = err.Error()
	r.finish(ctx)
	return r.job, err
}

func (r *runner[T]) finish(ctx context.Context) {
	r.job.EndedAt = time.Now()
	if r.job.StartedAt.IsZero() {
		r.job.StartedAt = r.job.EndedAt
	}
	if r.logger == nil {
		r.logger = r.cfg.logger.With("pipeline", r.job.Name)
	}
	r.cfg.observer.JobFinished(r.job.Snapshot())

	if r.cfg.recorder != nil {
		// The run context may already be cancelled; the record must still land.
		if err := r.cfg.recorder.SaveJob(context.WithoutCancel(ctx), r.job.Snapshot()); err != nil {
			r.logger.Error("failed to record job", "err", err)
		}
	}
}
