package batch

import (
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherCallerRunsWhenSaturated(t *testing.T) {
	d, err := newDispatcher(Policy{Workers: 1, QueueCapacity: 0}, slog.Default())
	require.NoError(t, err)
	defer d.release()

	block := make(chan struct{})
	started := make(chan struct{})
	assert.False(t, d.submit(func() { close(started); <-block }))
	<-started

	var ran atomic.Bool
	assert.True(t, d.submit(func() { ran.Store(true) }), "saturated pool with no queue runs inline")
	assert.True(t, ran.Load())

	close(block)
	d.wait()
}

func TestDispatcherQueuesBeforeRunningInline(t *testing.T) {
	d, err := newDispatcher(Policy{Workers: 1, QueueCapacity: 2}, slog.Default())
	require.NoError(t, err)
	defer d.release()

	block := make(chan struct{})
	started := make(chan struct{})
	d.submit(func() { close(started); <-block })
	<-started

	var count atomic.Int32
	task := func() { count.Add(1) }
	assert.False(t, d.submit(task), "first queued")
	assert.False(t, d.submit(task), "second queued")
	assert.True(t, d.submit(task), "queue full, inline")
	assert.EqualValues(t, 1, count.Load())

	close(block)
	d.wait()
	assert.EqualValues(t, 3, count.Load())
}
