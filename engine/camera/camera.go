package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/vike-go/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// SafePitch is the largest pitch magnitude the camera accepts, just short of straight
// up or down where the look-at basis degenerates.
const SafePitch = math.Pi/2 - 0.0001

// openGLToWGPU remaps clip-space depth from [-1, 1] to the [0, 1] range WebGPU expects.
var openGLToWGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	yaw      float32
	pitch    float32

	fovy   float32
	aspect float32
	near   float32
	far    float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera defines the interface for a yaw/pitch fly camera with a perspective projection.
// Yaw rotates about +Y starting from +X; pitch tilts toward +Y and is clamped to SafePitch.
// Matrices are computed on demand for WebGPU clip space.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p mgl32.Vec3)

	// Yaw returns the horizontal angle in radians.
	//
	// Returns:
	//   - float32: yaw in radians
	Yaw() float32

	// SetYaw sets the horizontal angle in radians.
	//
	// Parameters:
	//   - yaw: the new yaw
	SetYaw(yaw float32)

	// Pitch returns the vertical angle in radians.
	//
	// Returns:
	//   - float32: pitch in radians
	Pitch() float32

	// SetPitch sets the vertical angle in radians, clamped to [-SafePitch, SafePitch].
	//
	// Parameters:
	//   - pitch: the new pitch
	SetPitch(pitch float32)

	// Forward returns the unit view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the direction the camera faces
	Forward() mgl32.Vec3

	// Fovy returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: the field of view
	Fovy() float32

	// SetFovy sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fovy: the field of view
	SetFovy(fovy float32)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Resize sets the aspect ratio from a framebuffer size. Zero sizes are ignored.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	Resize(width, height uint32)

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the world-to-view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection with [0, 1] depth.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Uniform returns the camera state packed for the GPU.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform contents
	Uniform() GPUCameraUniform

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	// Returns nil if not set.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the camera's bind group provider.
	//
	// Parameters:
	//   - provider: the bind group provider to set
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at (0, 5, 10) looking down -Z with a 45 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 5, 10},
		yaw:      mgl32.DegToRad(-90),
		pitch:    mgl32.DegToRad(-20),
		fovy:     mgl32.DegToRad(45),
		aspect:   1.0,
		near:     0.1,
		far:      1000.0,
	}
	for _, option := range options {
		option(c)
	}
	c.pitch = clampPitch(c.pitch)
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) SetYaw(yaw float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw = yaw
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) SetPitch(pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pitch = clampPitch(pitch)
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward()
}

func (c *cameraImpl) Fovy() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovy
}

func (c *cameraImpl) SetFovy(fovy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fovy = fovy
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.SetAspect(float32(width) / float32(height))
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection()
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection().Mul4(c.view())
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewPosition: [4]float32{c.position[0], c.position[1], c.position[2], 1},
		ViewProj:     [16]float32(c.projection().Mul4(c.view())),
	}
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindGroupProvider = provider
}

// forward computes the view direction. Caller must hold the mutex.
func (c *cameraImpl) forward() mgl32.Vec3 {
	sinPitch, cosPitch := math.Sincos(float64(c.pitch))
	sinYaw, cosYaw := math.Sincos(float64(c.yaw))
	return mgl32.Vec3{
		float32(cosPitch * cosYaw),
		float32(sinPitch),
		float32(cosPitch * sinYaw),
	}.Normalize()
}

// view computes the look-at matrix. Caller must hold the mutex.
func (c *cameraImpl) view() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.forward()), mgl32.Vec3{0, 1, 0})
}

// projection computes the perspective matrix. Caller must hold the mutex.
func (c *cameraImpl) projection() mgl32.Mat4 {
	return openGLToWGPU.Mul4(mgl32.Perspective(c.fovy, c.aspect, c.near, c.far))
}

func clampPitch(pitch float32) float32 {
	return mgl32.Clamp(pitch, -SafePitch, SafePitch)
}
