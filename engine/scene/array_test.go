package scene

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func TestGeneratorFunc(t *testing.T) {
	var gen ArrayGenerator = GeneratorFunc(func(i int) transform.Transform {
		return transform.At(mgl32.Vec3{float32(i * 2), 0, 0})
	})
	assert.Equal(t, mgl32.Vec3{6, 0, 0}, gen.Transform(3).Position)
}

func TestGridLayout(t *testing.T) {
	g := Grid{Columns: 10, Spacing: 3, Origin: mgl32.Vec3{-15, 0, -15}}

	assert.Equal(t, mgl32.Vec3{-15, 0, -15}, g.Transform(0).Position)
	assert.Equal(t, mgl32.Vec3{-12, 0, -15}, g.Transform(1).Position)
	assert.Equal(t, mgl32.Vec3{-15, 0, -12}, g.Transform(10).Position)
	assert.Equal(t, mgl32.Vec3{12, 0, 12}, g.Transform(99).Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, g.Transform(5).Scale)
}

func TestGridZeroColumnsIsSingleColumn(t *testing.T) {
	g := Grid{Spacing: 1}
	assert.Equal(t, mgl32.Vec3{0, 0, 4}, g.Transform(4).Position)
}

func TestRingSpacing(t *testing.T) {
	r := Ring{Radius: 5, Count: 4, Axis: mgl32.Vec3{0, 1, 0}}

	for i := range 4 {
		p := r.Transform(i).Position
		assert.InDelta(t, 5, p.Len(), eps)
		assert.InDelta(t, 0, p.Y(), eps)
	}
	a, b := r.Transform(0).Position, r.Transform(1).Position
	assert.InDelta(t, 0, a.Dot(b), eps)
	assertVec3Near(t, a, r.Transform(4).Position)
}

func TestRingAxisParallelToReference(t *testing.T) {
	r := Ring{Radius: 2, Count: 8, Axis: mgl32.Vec3{3, 0, 0}}
	p := r.Transform(3).Position
	assert.InDelta(t, 2, p.Len(), eps)
	assert.InDelta(t, 0, p.X(), eps)
}

func TestSpiral(t *testing.T) {
	s := Spiral{Radius: 10, AngleStep: 0.25, Rise: 0.25}

	p0 := s.Transform(0).Position
	assert.InDelta(t, 0, p0.X(), eps)
	assert.InDelta(t, 0, p0.Y(), eps)
	assert.InDelta(t, 10, p0.Z(), eps)

	p := s.Transform(8).Position
	assert.InDelta(t, 10*math.Sin(2), p.X(), eps)
	assert.InDelta(t, 2, p.Y(), eps)
	assert.InDelta(t, 10*math.Cos(2), p.Z(), eps)
}

func TestColumn(t *testing.T) {
	c := Column{Step: mgl32.Vec3{0, 20, 0}}
	assert.Equal(t, mgl32.Vec3{0, 820, 0}, c.Transform(41).Position)
}

func assertVec3Near(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], eps, "got %v", got)
}
