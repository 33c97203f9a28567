package camera

import (
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	speed       float32
	sensitivity float32

	// Held movement keys, 1 while pressed.
	forward, backward float32
	left, right       float32
	up, down          float32

	// One-shot deltas consumed by UpdateCamera.
	rotateHorizontal float32
	rotateVertical   float32
	scroll           float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new fly camera controller moving at 4 units per second
// with a look sensitivity of 0.6.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		speed:       4.0,
		sensitivity: 0.6,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) HandleKey(key int, pressed bool) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	var amount float32
	if pressed {
		amount = 1
	}
	switch key {
	case common.KeyW, common.KeyUp:
		cc.forward = amount
	case common.KeyS, common.KeyDown:
		cc.backward = amount
	case common.KeyA, common.KeyLeft:
		cc.left = amount
	case common.KeyD, common.KeyRight:
		cc.right = amount
	case common.KeySpace:
		cc.up = amount
	case common.KeyLeftShift:
		cc.down = amount
	default:
		return false
	}
	return true
}

func (cc *cameraControllerImpl) HandleMouseMotion(dx, dy float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotateHorizontal += float32(dx)
	cc.rotateVertical += float32(dy)
}

func (cc *cameraControllerImpl) HandleScroll(dy float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.scroll += float32(dy)
}

func (cc *cameraControllerImpl) UpdateCamera(cam Camera, dt time.Duration) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	secs := float32(dt.Seconds())
	yaw := cam.Yaw()
	sinYaw, cosYaw := math.Sincos(float64(yaw))

	// Walking stays on the horizontal plane regardless of pitch.
	forward := mgl32.Vec3{float32(cosYaw), 0, float32(sinYaw)}
	right := mgl32.Vec3{float32(-sinYaw), 0, float32(cosYaw)}

	pos := cam.Position()
	pos = pos.Add(forward.Mul((cc.forward - cc.backward) * cc.speed * secs))
	pos = pos.Add(right.Mul((cc.right - cc.left) * cc.speed * secs))
	pos = pos.Add(cam.Forward().Mul(cc.scroll * cc.speed * cc.sensitivity * secs))
	pos[1] += (cc.up - cc.down) * cc.speed * secs
	cam.SetPosition(pos)

	cam.SetYaw(yaw + cc.rotateHorizontal*cc.sensitivity*secs)
	cam.SetPitch(cam.Pitch() - cc.rotateVertical*cc.sensitivity*secs)

	cc.rotateHorizontal, cc.rotateVertical, cc.scroll = 0, 0, 0
}

func (cc *cameraControllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sensitivity
}

func (cc *cameraControllerImpl) SetSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.speed = speed
}

func (cc *cameraControllerImpl) SetSensitivity(sensitivity float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.sensitivity = sensitivity
}
