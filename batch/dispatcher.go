package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// dispatcher runs tasks on a non-blocking ants pool backed by a bounded
// queue. Tasks that find both the pool and the queue full run on the
// submitting goroutine.
type dispatcher struct {
	pool  *ants.Pool
	queue chan func()
	wg    sync.WaitGroup

	logger *slog.Logger
}

func newDispatcher(policy Policy, logger *slog.Logger) (*dispatcher, error) {
	pool, err := ants.NewPool(policy.Workers,
		ants.WithNonblocking(true),
		ants.WithLogger(antsLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &dispatcher{
		pool:   pool,
		queue:  make(chan func(), policy.QueueCapacity),
		logger: logger,
	}, nil
}

// submit schedules task. It never blocks waiting for a worker.
// It returns true when the task ran on the calling goroutine.
func (d *dispatcher) submit(task func()) bool {
	d.wg.Add(1)
	run := func() {
		defer d.wg.Done()
		task()
	}

	err := d.pool.Submit(func() {
		run()
		d.drain()
	})
	if err == nil {
		return false
	}
	if !errors.Is(err, ants.ErrPoolOverload) {
		d.logger.Warn("worker pool rejected task, running inline", "err", err)
		run()
		return true
	}

	select {
	case d.queue <- run:
		return false
	default:
		run()
		return true
	}
}

// drain runs queued tasks until the queue is empty.
func (d *dispatcher) drain() {
	for {
		select {
		case run := <-d.queue:
			run()
		default:
			return
		}
	}
}

// wait drains the queue on the calling goroutine and blocks until every
// submitted task has finished.
func (d *dispatcher) wait() {
	d.drain()
	d.wg.Wait()
}

func (d *dispatcher) release() {
	d.pool.Release()
}

// antsLogger adapts slog.Logger to the ants.Logger interface.
type antsLogger struct {
	logger *slog.Logger
}

func (l antsLogger) Printf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "ants")
}
