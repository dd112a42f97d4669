package batch

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporter_Basic(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressReporter(&buf, 100, 10)

	reporter.JobStarted(&ChunkJob{})
	assert.True(t, reporter.started, "should be started")

	reporter.ChunkCompleted(&ChunkJob{Read: 50}, ChunkStats{})
	reporter.ChunkCompleted(&ChunkJob{Read: 100}, ChunkStats{})

	elapsed := reporter.Elapsed()
	assert.Greater(t, elapsed, time.Duration(0), "elapsed time should be positive")

	output := buf.String()
	assert.Contains(t, output, "50/100")
	assert.Contains(t, output, "100/100", "should show completion")
	assert.Contains(t, output, "100.0%", "should show 100%")
}

func TestProgressReporter_Interval(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressReporter(&buf, 1000, 100)

	reporter.JobStarted(&ChunkJob{})
	reporter.ChunkCompleted(&ChunkJob{Read: 50}, ChunkStats{})
	assert.Empty(t, buf.String(), "below the interval nothing is printed")

	reporter.ChunkCompleted(&ChunkJob{Read: 150}, ChunkStats{})
	assert.Contains(t, buf.String(), "150/1000")
}

func TestProgressReporter_Finish(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressReporter(&buf, 0, 10)

	reporter.JobStarted(&ChunkJob{})
	reporter.ChunkCompleted(&ChunkJob{Read: 75}, ChunkStats{})
	reporter.JobFinished(&ChunkJob{Read: 80, Status: StatusCompleted})

	output := buf.String()
	assert.Contains(t, output, "Progress: 80 ", "unknown total prints the raw count")
	assert.Contains(t, output, "\n", "finish should print newline")
}

func TestProgressReporter_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressReporter(&buf, 10, 1)

	reporter.ChunkCompleted(&ChunkJob{Read: 5}, ChunkStats{})
	reporter.JobFinished(&ChunkJob{Read: 5})
	assert.Empty(t, buf.String())
	assert.Zero(t, reporter.Elapsed())
}
