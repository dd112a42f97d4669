package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	for _, s := range []Status{StatusCreated, StatusRunning, StatusCompleted, StatusFailed} {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusRunning.Terminal())

	_, err := ParseStatus("PAUSED")
	assert.Error(t, err)
}

func TestChunkJobSnapshot(t *testing.T) {
	job := &ChunkJob{ID: 1, Parameters: Parameters{"a": "1"}}
	snap := job.Snapshot()
	snap.Parameters["a"] = "2"
	snap.Read = 9

	assert.Equal(t, "1", job.Parameters.Get("a"))
	assert.Zero(t, job.Read)
}

func TestChunkJobDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	job := &ChunkJob{StartedAt: start, EndedAt: start.Add(3 * time.Second)}
	assert.Equal(t, 3*time.Second, job.Duration())
	assert.Zero(t, (&ChunkJob{}).Duration())
}

func TestCounterIDSource(t *testing.T) {
	var ids CounterIDSource
	a, _ := ids.NextJobID(context.Background())
	b, _ := ids.NextJobID(context.Background())
	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(2), b)
}

func TestParameters(t *testing.T) {
	var p Parameters
	assert.Equal(t, "", p.Get("x"))
	assert.NotNil(t, p.Clone())
}
