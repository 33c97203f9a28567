package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSurfaceLost means the surface must be reconfigured before the next frame.
	ErrSurfaceLost = errors.New("renderer: surface lost")

	// ErrSurfaceOutdated means the surface no longer matches the window and must be reconfigured.
	ErrSurfaceOutdated = errors.New("renderer: surface outdated")

	// ErrSurfaceTimeout means no surface texture became available in time. The frame is skipped.
	ErrSurfaceTimeout = errors.New("renderer: surface acquire timed out")

	// ErrOutOfMemory means the device ran out of memory. Rendering cannot continue.
	ErrOutOfMemory = errors.New("renderer: out of memory")

	// ErrReadback means the offscreen copy or buffer map failed. Rendering cannot continue.
	ErrReadback = errors.New("renderer: readback failed")

	// ErrNoAdapter means no GPU adapter matched the request, including the software fallback.
	ErrNoAdapter = errors.New("renderer: no suitable GPU adapter")

	// ErrNoDevice means the adapter refused to create a device.
	ErrNoDevice = errors.New("renderer: device request failed")

	// ErrNotHeadless is returned by ImageBuffer on a renderer that presents to a surface.
	ErrNotHeadless = errors.New("renderer: image buffer requires the offscreen output")
)

// IsRecoverable reports whether err is a surface error cured by reconfiguring the surface
// at the current window size and rendering again.
//
// Parameters:
//   - err: an error returned by Render
//
// Returns:
//   - bool: true for ErrSurfaceLost and ErrSurfaceOutdated
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated)
}

// classifySurfaceError maps a failed surface texture acquire to one of the surface sentinels.
// The native status name is carried in the error text. Unknown failures are treated as lost.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(strings.NewReplacer(" ", "", "_", "").Replace(err.Error()))

	var sentinel error
	switch {
	case strings.Contains(msg, "outofmemory"):
		sentinel = ErrOutOfMemory
	case strings.Contains(msg, "timeout"):
		sentinel = ErrSurfaceTimeout
	case strings.Contains(msg, "outdated"):
		sentinel = ErrSurfaceOutdated
	default:
		sentinel = ErrSurfaceLost
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
