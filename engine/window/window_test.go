package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineWindowDefaults(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "vike", w.title)
	assert.True(t, w.resizable)
	assert.True(t, w.closeOnEscape)
	width, height := w.FramebufferSize()
	assert.Equal(t, 1280, width)
	assert.Equal(t, 720, height)
}

func TestBuilderOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("demo"),
		WithSize(800, 600),
		WithSizeLimits(100, 50, 1000, 900),
		WithResizable(false),
		WithCloseOnEscape(false),
	)
	assert.Equal(t, "demo", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
	assert.Equal(t, [2]int{100, 50}, w.minSize)
	assert.Equal(t, [2]int{1000, 900}, w.maxSize)
	assert.False(t, w.resizable)
	assert.False(t, w.closeOnEscape)
}

func TestEventQueueDrainsInOrder(t *testing.T) {
	w := newEngineWindow()
	w.push(Event{Type: EventKeyDown, Key: 87})
	w.push(Event{Type: EventScroll, DY: 1})
	w.push(Event{Type: EventKeyUp, Key: 87})

	events := w.drain()
	require.Len(t, events, 3)
	assert.Equal(t, EventKeyDown, events[0].Type)
	assert.Equal(t, EventScroll, events[1].Type)
	assert.Equal(t, EventKeyUp, events[2].Type)
	assert.Empty(t, w.drain())
}

func TestResizeEventUpdatesFramebufferSize(t *testing.T) {
	w := newEngineWindow()
	w.push(Event{Type: EventResize, Width: 1920, Height: 1080})

	width, height := w.FramebufferSize()
	assert.Equal(t, 1920, width)
	assert.Equal(t, 1080, height)
}

func TestCursorDeltas(t *testing.T) {
	w := newEngineWindow()
	w.pushCursor(100, 100)
	w.pushCursor(110, 95)

	events := w.drain()
	require.Len(t, events, 2)
	assert.Zero(t, events[0].DX)
	assert.Zero(t, events[0].DY)
	assert.Equal(t, 10.0, events[1].DX)
	assert.Equal(t, -5.0, events[1].DY)
	assert.Equal(t, 110.0, events[1].X)
}

func TestUnspawnedWindow(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Empty(t, w.PollEvents())
	assert.Error(t, w.Close())
	assert.NotPanics(t, func() {
		w.SetCursorCaptured(true)
		w.SetTitle("x")
	})
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "resize", EventResize.String())
	assert.Equal(t, "close", EventClose.String())
	assert.Equal(t, "EventType(42)", EventType(42).String())
}
