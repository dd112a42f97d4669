package batch

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Reader produces records one at a time. It returns io.EOF once the stream
// is exhausted. Read is only ever called from a single goroutine.
type Reader[T any] interface {
	Read(ctx context.Context) (T, error)
}

// Processor transforms a record. Returning keep == false marks the record
// as skipped; a non-nil error marks it as failed. Both exclude the record
// from the chunk write. Process is called concurrently.
type Processor[T any] interface {
	Process(ctx context.Context, item T) (out T, keep bool, err error)
}

// Writer commits the surviving records of one chunk. Each call must be
// atomic: either every record is committed or none is.
type Writer[T any] interface {
	Write(ctx context.Context, items []T) error
}

// ParameterValidator checks job parameters before any chunk runs.
type ParameterValidator interface {
	Validate(params Parameters) error
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc[T any] func(ctx context.Context) (T, error)

func (f ReaderFunc[T]) Read(ctx context.Context) (T, error) { return f(ctx) }

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc[T any] func(ctx context.Context, item T) (T, bool, error)

func (f ProcessorFunc[T]) Process(ctx context.Context, item T) (T, bool, error) {
	return f(ctx, item)
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc[T any] func(ctx context.Context, items []T) error

func (f WriterFunc[T]) Write(ctx context.Context, items []T) error { return f(ctx, items) }

// ValidatorFunc adapts a function to the ParameterValidator interface.
type ValidatorFunc func(params Parameters) error

func (f ValidatorFunc) Validate(params Parameters) error { return f(params) }

// RequireParameters returns a validator that rejects blank or missing parameters.
func RequireParameters(names ...string) ParameterValidator {
	return ValidatorFunc(func(params Parameters) error {
		var missing []string
		for _, name := range names {
			if strings.TrimSpace(params.Get(name)) == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing %s", ErrInvalidJobParameter, strings.Join(missing, ", "))
		}
		return nil
	})
}

// Policy bounds the concurrency of item processing.
type Policy struct {
	// Workers is the number of pooled goroutines processing records. Must be >= 1.
	Workers int

	// QueueCapacity is the number of records that may wait for a free worker.
	// When the queue is full the dispatching goroutine runs the record itself.
	QueueCapacity int
}

// DefaultPolicy returns five workers with three queue slots.
func DefaultPolicy() Policy {
	return Policy{Workers: 5, QueueCapacity: 3}
}

// CPUPolicy sizes the pool to half the available CPUs, minimum 1.
func CPUPolicy() Policy {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return Policy{Workers: workers, QueueCapacity: workers}
}

// Validate reports ErrInvalidPolicy for an unusable policy.
func (p Policy) Validate() error {
	if p.Workers < 1 {
		return fmt.Errorf("%w: workers=%d", ErrInvalidPolicy, p.Workers)
	}
	if p.QueueCapacity < 0 {
		return fmt.Errorf("%w: queue capacity=%d", ErrInvalidPolicy, p.QueueCapacity)
	}
	return nil
}

// DefaultChunkSize is used when a Step leaves ChunkSize at zero.
const DefaultChunkSize = 100

// Step describes one chunk-oriented job.
type Step[T any] struct {
	Name      string
	Reader    Reader[T]
	Processor Processor[T]
	Writer    Writer[T]

	ChunkSize int
	Policy    Policy

	// Validator is optional.
	Validator ParameterValidator
}

func (s *Step[T]) normalize() error {
	if s.Name == "" {
		s.Name = "job"
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.Policy == (Policy{}) {
		s.Policy = DefaultPolicy()
	}
	switch {
	case s.Reader == nil:
		return ErrReaderRequired
	case s.Processor == nil:
		return ErrProcessorRequired
	case s.Writer == nil:
		return ErrWriterRequired
	case s.ChunkSize < 0:
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, s.ChunkSize)
	}
	return s.Policy.Validate()
}
