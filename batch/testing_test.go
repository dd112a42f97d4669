package batch

import (
	"context"
	"io"
	"sync"
)

// sliceReader yields the given items then io.EOF.
type sliceReader[T any] struct {
	mu    sync.Mutex
	items []T
	pos   int
	calls int
}

func newSliceReader[T any](items ...T) *sliceReader[T] {
	return &sliceReader[T]{items: items}
}

func (r *sliceReader[T]) Read(_ context.Context) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	var zero T
	if r.pos >= len(r.items) {
		return zero, io.EOF
	}
	item := r.items[r.pos]
	r.pos++
	return item, nil
}

// collectingWriter records every committed chunk.
type collectingWriter[T any] struct {
	mu     sync.Mutex
	chunks [][]T
	err    error
	failAt int // 1-based chunk index to fail on, 0 = never
}

func (w *collectingWriter[T]) Write(_ context.Context, items []T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failAt > 0 && len(w.chunks)+1 == w.failAt {
		return w.err
	}
	w.chunks = append(w.chunks, append([]T(nil), items...))
	return nil
}

func (w *collectingWriter[T]) all() []T {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []T
	for _, c := range w.chunks {
		out = append(out, c...)
	}
	return out
}

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

var passThrough = ProcessorFunc[int](func(_ context.Context, item int) (int, bool, error) {
	return item, true, nil
})

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	started  []*ChunkJob
	chunks   []ChunkStats
	finished []*ChunkJob
}

func (o *recordingObserver) JobStarted(job *ChunkJob) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, job)
}

func (o *recordingObserver) ChunkCompleted(_ *ChunkJob, stats ChunkStats) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.chunks = append(o.chunks, stats)
}

func (o *recordingObserver) JobFinished(job *ChunkJob) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, job)
}

type memoryRecorder struct {
	mu   sync.Mutex
	jobs []*ChunkJob
}

func (m *memoryRecorder) SaveJob(_ context.Context, job *ChunkJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}
