package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight("red")
	assert.Equal(t, "red", l.Name())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.Equal(t, transform.Identity(), *l.Transform())
	assert.Nil(t, l.Model())
}

func TestTransformIsMutableInPlace(t *testing.T) {
	l := NewLight("red", WithTransform(transform.At(mgl32.Vec3{0, 2, 64})))
	l.Transform().Position[1] = 10
	assert.Equal(t, float32(10), l.Transform().Position[1])
}

func TestToGPUUsesInstancePlacement(t *testing.T) {
	l := NewLight("green", WithColor(mgl32.Vec3{0, 1, 0}), WithIntensity(1000))
	g := l.ToGPU(transform.At(mgl32.Vec3{4, 5, 6}))
	assert.Equal(t, [3]float32{4, 5, 6}, g.Position)
	assert.Equal(t, [3]float32{0, 1, 0}, g.Color)
	assert.Equal(t, float32(1000), g.Intensity)
}

func TestGPULightMarshal(t *testing.T) {
	g := GPULight{Position: [3]float32{1, 2, 3}, Intensity: 4, Color: [3]float32{5, 6, 7}}
	buf := g.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, 32, g.Size())
	for i := range 7 {
		assert.Equal(t, float32(i+1), math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}
}

func TestLightUniformPushClampsAtCapacity(t *testing.T) {
	var u LightUniform
	for i := range MaxLights {
		assert.True(t, u.Push(GPULight{Intensity: float32(i)}))
	}
	assert.True(t, u.Full())
	assert.False(t, u.Push(GPULight{Intensity: -1}))
	assert.Equal(t, uint32(MaxLights), u.Count)
}

func TestLightUniformMarshalLayout(t *testing.T) {
	var u LightUniform
	u.Push(GPULight{Position: [3]float32{1, 0, 0}, Intensity: 2})
	buf := u.Marshal()

	assert.Equal(t, 4112, u.Size())
	require.Len(t, buf, 4112)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[4096:]))
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
	for _, b := range buf[32:4096] {
		if b != 0 {
			t.Fatal("entries beyond the count must be zero")
		}
	}
}
