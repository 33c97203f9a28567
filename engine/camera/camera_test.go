package camera

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func TestForwardFromYawPitch(t *testing.T) {
	c := NewCamera(WithYawPitch(0, 0))
	assertVec3Near(t, mgl32.Vec3{1, 0, 0}, c.Forward())

	c.SetYaw(mgl32.DegToRad(-90))
	assertVec3Near(t, mgl32.Vec3{0, 0, -1}, c.Forward())
}

func TestPitchIsClamped(t *testing.T) {
	c := NewCamera(WithYawPitch(0, 10))
	assert.InDelta(t, SafePitch, c.Pitch(), eps)

	c.SetPitch(-10)
	assert.InDelta(t, -SafePitch, c.Pitch(), eps)
}

func TestResizeIgnoresZero(t *testing.T) {
	c := NewCamera()
	c.Resize(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, c.Aspect(), eps)

	c.Resize(0, 600)
	assert.InDelta(t, 1920.0/1080.0, c.Aspect(), eps)
}

func TestProjectionDepthRange(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{}), WithYawPitch(mgl32.DegToRad(-90), 0), WithClipPlanes(0.1, 100))
	vp := c.ViewProjectionMatrix()

	near := vp.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := vp.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), eps)
	assert.InDelta(t, 1, far.Z()/far.W(), eps)
}

func TestViewMatrixMovesEyeToOrigin(t *testing.T) {
	eye := mgl32.Vec3{3, 4, 5}
	c := NewCamera(WithPosition(eye))
	p := c.ViewMatrix().Mul4x1(eye.Vec4(1))
	assertVec3Near(t, mgl32.Vec3{}, p.Vec3())
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{1, 2, 3}))
	u := c.Uniform()
	buf := u.Marshal()

	require.Len(t, buf, 80)
	assert.Equal(t, 80, u.Size())
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(3), f(8))
	assert.Equal(t, float32(1), f(12))
	assert.Equal(t, u.ViewProj[0], f(16))
	assert.Equal(t, [16]float32(c.ViewProjectionMatrix()), u.ViewProj)
}

func TestControllerWalksOnHorizontalPlane(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{}), WithYawPitch(0, -1))
	cc := NewCameraController(WithSpeed(2))

	assert.True(t, cc.HandleKey(common.KeyW, true))
	cc.UpdateCamera(c, time.Second)
	assertVec3Near(t, mgl32.Vec3{2, 0, 0}, c.Position())

	cc.HandleKey(common.KeyW, false)
	cc.HandleKey(common.KeySpace, true)
	cc.HandleKey(common.KeyD, true)
	cc.UpdateCamera(c, 500*time.Millisecond)
	assertVec3Near(t, mgl32.Vec3{2, 1, 1}, c.Position())
}

func TestControllerIgnoresOtherKeys(t *testing.T) {
	cc := NewCameraController()
	assert.False(t, cc.HandleKey(common.KeyP, true))
}

func TestControllerMouseLookIsOneShot(t *testing.T) {
	c := NewCamera(WithYawPitch(0, 0))
	cc := NewCameraController(WithSensitivity(0.5))

	cc.HandleMouseMotion(2, 1)
	cc.UpdateCamera(c, time.Second)
	assert.InDelta(t, 1, c.Yaw(), eps)
	assert.InDelta(t, -0.5, c.Pitch(), eps)

	cc.UpdateCamera(c, time.Second)
	assert.InDelta(t, 1, c.Yaw(), eps)
	assert.InDelta(t, -0.5, c.Pitch(), eps)
}

func TestControllerScrollZoomsAlongView(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{}), WithYawPitch(0, 0))
	cc := NewCameraController(WithSpeed(4), WithSensitivity(0.5))

	cc.HandleScroll(1)
	cc.UpdateCamera(c, time.Second)
	assertVec3Near(t, mgl32.Vec3{2, 0, 0}, c.Position())
}

func TestControllerDefaults(t *testing.T) {
	cc := NewCameraController()
	assert.Equal(t, float32(4), cc.Speed())
	assert.Equal(t, float32(0.6), cc.Sensitivity())
	cc.SetSpeed(6)
	cc.SetSensitivity(0.4)
	assert.Equal(t, float32(6), cc.Speed())
	assert.Equal(t, float32(0.4), cc.Sensitivity())
}

func assertVec3Near(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], eps, "got %v", got)
}
