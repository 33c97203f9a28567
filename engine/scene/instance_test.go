package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceRawSize(t *testing.T) {
	var r InstanceRaw
	assert.Equal(t, 100, r.Size())
	assert.Equal(t, uint64(100), InstanceBufferLayout().ArrayStride)
}

func TestInstanceRawFromTransform(t *testing.T) {
	tr := transform.Transform{
		Position: mgl32.Vec3{1, 2, 3},
		Scale:    mgl32.Vec3{2, 2, 2},
	}
	r := NewInstanceRaw(tr)

	assert.Equal(t, [16]float32(tr.Matrix()), r.Model)
	assert.Equal(t, [9]float32(tr.NormalMatrix()), r.Normal)
	assert.Equal(t, float32(0.5), r.Normal[0])
}

func TestInstanceRawColorUsesThirdRow(t *testing.T) {
	r := NewInstanceRaw(transform.Identity())
	r.SetColor(mgl32.Vec3{0.1, 0.2, 0.3})

	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, r.Color())
	assert.Equal(t, float32(0.1), r.Normal[2])
	assert.Equal(t, float32(0.2), r.Normal[5])
	assert.Equal(t, float32(0.3), r.Normal[8])
	// The first two rows are untouched.
	assert.Equal(t, float32(1), r.Normal[0])
	assert.Equal(t, float32(1), r.Normal[4])
}

func TestMarshalInstancesLayout(t *testing.T) {
	a := NewInstanceRaw(transform.At(mgl32.Vec3{7, 8, 9}))
	b := NewInstanceRaw(transform.Identity())
	b.SetColor(mgl32.Vec3{1, 0.5, 0.25})

	buf := MarshalInstances([]InstanceRaw{a, b})
	require.Len(t, buf, 200)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(7), f(48))
	assert.Equal(t, float32(8), f(52))
	assert.Equal(t, float32(9), f(56))
	assert.Equal(t, float32(1), f(100+64+2*4))
	assert.Equal(t, float32(0.5), f(100+64+5*4))
	assert.Equal(t, float32(0.25), f(100+64+8*4))
}

func TestInstanceBufferLayoutLocations(t *testing.T) {
	layout := InstanceBufferLayout()
	require.Len(t, layout.Attributes, 7)
	for i, attr := range layout.Attributes {
		assert.Equal(t, uint32(5+i), attr.ShaderLocation)
	}
	assert.Equal(t, uint64(88), layout.Attributes[6].Offset)
}
