package camera

import "time"

// CameraController defines the interface for a fly camera input handler.
// Input callbacks accumulate intent; UpdateCamera applies it to a Camera scaled by the
// frame time and consumes the one-shot mouse and scroll deltas.
type CameraController interface {
	// HandleKey records a movement key press or release.
	// W/S or Up/Down move forward and back, A/D or Left/Right strafe,
	// Space rises and Left Shift sinks.
	//
	// Parameters:
	//   - key: the key code (see common key codes)
	//   - pressed: true on press, false on release
	//
	// Returns:
	//   - bool: true if the key is a movement key and was consumed
	HandleKey(key int, pressed bool) bool

	// HandleMouseMotion accumulates a look delta in pixels.
	//
	// Parameters:
	//   - dx, dy: cursor movement since the previous event
	HandleMouseMotion(dx, dy float64)

	// HandleScroll accumulates a zoom delta. Positive values move toward the view direction.
	//
	// Parameters:
	//   - dy: vertical scroll offset
	HandleScroll(dy float64)

	// UpdateCamera applies the accumulated input to cam.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - dt: the frame time
	UpdateCamera(cam Camera, dt time.Duration)

	// Speed returns the movement speed in units per second.
	//
	// Returns:
	//   - float32: the speed
	Speed() float32

	// Sensitivity returns the look and zoom sensitivity multiplier.
	//
	// Returns:
	//   - float32: the sensitivity
	Sensitivity() float32

	// SetSpeed sets the movement speed in units per second.
	//
	// Parameters:
	//   - speed: the new speed
	SetSpeed(speed float32)

	// SetSensitivity sets the look and zoom sensitivity multiplier.
	//
	// Parameters:
	//   - sensitivity: the new sensitivity
	SetSensitivity(sensitivity float32)
}
