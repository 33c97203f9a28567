package window

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// EventType identifies the kind of a window Event.
type EventType int

const (
	// EventResize reports a new framebuffer size in pixels (Width, Height).
	EventResize EventType = iota
	// EventKeyDown reports a key press or auto-repeat (Key).
	EventKeyDown
	// EventKeyUp reports a key release (Key).
	EventKeyUp
	// EventMouseButtonDown reports a mouse button press (Button, X, Y).
	EventMouseButtonDown
	// EventMouseButtonUp reports a mouse button release (Button, X, Y).
	EventMouseButtonUp
	// EventCursorMove reports the cursor position (X, Y) and the motion since the previous move (DX, DY).
	EventCursorMove
	// EventScroll reports wheel offsets (DX horizontal, DY vertical, positive is away from the user).
	EventScroll
	// EventFocus reports focus gained or lost (Focused).
	EventFocus
	// EventClose reports a close request from the window system.
	EventClose
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventResize:
		return "resize"
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventMouseButtonDown:
		return "mouse_down"
	case EventMouseButtonUp:
		return "mouse_up"
	case EventCursorMove:
		return "cursor_move"
	case EventScroll:
		return "scroll"
	case EventFocus:
		return "focus"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Event is one input or window-state change. Only the fields named by Type are meaningful.
type Event struct {
	Type EventType

	Width  int
	Height int

	// Key is a common.Key* code.
	Key int

	Button MouseButton

	X  float64
	Y  float64
	DX float64
	DY float64

	Focused bool
}

// Window provides platform windowing and input event handling.
// Input is queued by the platform callbacks and drained once per frame with PollEvents.
type Window interface {
	// PollEvents processes pending platform messages and returns every event queued since the previous call.
	//
	// Returns:
	//   - []Event: the events in arrival order
	PollEvents() []Event

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// FramebufferSize returns the drawable size in pixels, which differs from the window size on high-DPI displays.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	FramebufferSize() (int, int)

	// SetCursorCaptured hides and locks the cursor for mouse look, or releases it.
	//
	// Parameters:
	//   - captured: true to capture the cursor
	SetCursorCaptured(captured bool)

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the pending event queue.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minSize and maxSize bound interactive resizing as {width, height}.
	minSize [2]int
	maxSize [2]int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// resizable controls whether the user can resize the window.
	resizable bool

	// closeOnEscape closes the window when Escape is pressed.
	closeOnEscape bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	mu      *sync.Mutex
	pending []Event

	// last cursor position, used for DX/DY
	cursorX, cursorY float64
	cursorSeen       bool
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:         "vike",
		minSize:       [2]int{320, 200},
		maxSize:       [2]int{7680, 4320},
		width:         1280,
		height:        720,
		resizable:     true,
		closeOnEscape: true,
		mu:            &sync.Mutex{},
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) PollEvents() []Event {
	platformProcessMessages(w)
	return w.drain()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) FramebufferSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.width, w.height
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	platformSetCursorCaptured(w, captured)
	w.mu.Lock()
	w.cursorSeen = false
	w.mu.Unlock()
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

// push queues e.
func (w *engineWindow) push(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if e.Type == EventResize {
		w.width, w.height = e.Width, e.Height
	}
	w.pending = append(w.pending, e)
}

// pushCursor queues a cursor move with the delta from the previous position.
// The first move after creation or a capture change has a zero delta.
func (w *engineWindow) pushCursor(x, y float64) {
	w.mu.Lock()
	var dx, dy float64
	if w.cursorSeen {
		dx, dy = x-w.cursorX, y-w.cursorY
	}
	w.cursorX, w.cursorY, w.cursorSeen = x, y, true
	w.mu.Unlock()

	w.push(Event{Type: EventCursorMove, X: x, Y: y, DX: dx, DY: dy})
}

// drain returns and clears the queued events.
func (w *engineWindow) drain() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	events := w.pending
	w.pending = nil
	return events
}
