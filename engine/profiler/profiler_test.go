package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickWaitsForInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))), WithInterval(time.Hour))

	for range 10 {
		assert.False(t, p.Tick())
	}
	assert.Empty(t, buf.String())
}

func TestTickReportsStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))), WithInterval(20*time.Millisecond))

	time.Sleep(25 * time.Millisecond)
	assert.True(t, p.Tick())
	out := buf.String()
	assert.Contains(t, out, "frame stats")
	assert.Contains(t, out, "fps=")
	assert.Contains(t, out, "heap_mb=")

	// the counter restarts after a report
	assert.False(t, p.Tick())
}

func TestNewProfilerDefaults(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithLogger(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.Same(t, slog.Default(), p.logger)
}
