package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindowDefaults(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "Forward", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Zero(t, w.minWidth)
	assert.Zero(t, w.maxHeight)
}

func TestWindowOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("Scene"),
		WithSize(1024, 0),
		WithMinSize(200, 150),
		WithMaxSize(1920, 1080),
	)
	assert.Equal(t, "Scene", w.title)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 200, w.minWidth)
	assert.Equal(t, 150, w.minHeight)
	assert.Equal(t, 1920, w.maxWidth)
	assert.Equal(t, 1080, w.maxHeight)
}

func TestSizeLimit(t *testing.T) {
	assert.Equal(t, glfw.DontCare, sizeLimit(0))
	assert.Equal(t, glfw.DontCare, sizeLimit(-5))
	assert.Equal(t, 320, sizeLimit(320))
}

func TestUnopenedWindow(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Close())

	updates := 0
	w.SetUpdateCallback(func() { updates++ })
	w.ProcessMessages()
	assert.Zero(t, updates)
}
