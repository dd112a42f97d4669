package batch

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync/atomic"
	"time"
)

// Status is the lifecycle state of a ChunkJob.
type Status int

const (
	StatusCreated Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "CREATED"
	case StatusRunning:
		return "RUNNING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus converts the String form of a Status back into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusCreated, StatusRunning, StatusCompleted, StatusFailed} {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return StatusCreated, fmt.Errorf("unknown job status %q", s)
}

// Parameters are the named string arguments a job was launched with.
type Parameters map[string]string

// Get returns the named parameter, or "" when it is absent.
func (p Parameters) Get(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

// Clone returns an independent copy of p.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return Parameters{}
	}
	return maps.Clone(p)
}

// ChunkJob is the state of one Run invocation.
// Once Status is terminal the engine no longer mutates it.
type ChunkJob struct {
	ID         uint64
	Name       string
	Parameters Parameters
	Status     Status

	Read      int64 // Items pulled from the reader
	Processed int64 // Items handed to the processor
	Skipped   int64 // Items the processor filtered out
	Failed    int64 // Items whose processing returned an error
	Written   int64 // Items committed by the writer
	Chunks    int64 // Chunks committed

	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	// Error describes why the job failed. Empty unless Status is StatusFailed.
	Error string
}

// Duration is the time the job spent running.
func (j *ChunkJob) Duration() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	if j.EndedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.EndedAt.Sub(j.StartedAt)
}

// Snapshot returns a copy of the job that is safe to retain.
func (j *ChunkJob) Snapshot() *ChunkJob {
	cp := *j
	cp.Parameters = j.Parameters.Clone()
	return &cp
}

// ChunkStats are the counts of a single committed chunk.
type ChunkStats struct {
	Index     int64
	Read      int
	Processed int
	Skipped   int
	Failed    int
	Written   int
	Duration  time.Duration
}

// IDSource hands out job identifiers. Identifiers must increase monotonically.
type IDSource interface {
	NextJobID(ctx context.Context) (uint64, error)
}

// Recorder persists terminal jobs.
type Recorder interface {
	SaveJob(ctx context.Context, job *ChunkJob) error
}

// CounterIDSource is an in-process IDSource.
type CounterIDSource struct {
	last atomic.Uint64
}

// NextJobID returns the next identifier, starting at 1.
func (c *CounterIDSource) NextJobID(_ context.Context) (uint64, error) {
	return c.last.Add(1), nil
}

var defaultIDs = &CounterIDSource{}
