package scene

import (
	"math"

	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// ArrayGenerator produces the offset transform of one array element.
// The offset is composed onto the target's base transform with transform.Add.
// Implementations must be pure: large arrays are expanded concurrently and the same
// index must always yield the same transform.
type ArrayGenerator interface {
	// Transform returns the offset of the element at index.
	//
	// Parameters:
	//   - index: the element index in [0, count)
	//
	// Returns:
	//   - transform.Transform: the offset transform
	Transform(index int) transform.Transform
}

// GeneratorFunc adapts a plain function to the ArrayGenerator interface.
type GeneratorFunc func(index int) transform.Transform

// Transform calls f(index).
func (f GeneratorFunc) Transform(index int) transform.Transform {
	return f(index)
}

// Array multiplies the object or light named Target into Count instances.
// Arrays are keyed by (Target, Name). An array whose target does not exist is kept
// and produces nothing until an object or light with that name appears.
type Array struct {
	Name      string
	Target    string
	Count     int
	Generator ArrayGenerator
}

// Grid lays elements out row by row on the XZ plane, Columns per row.
type Grid struct {
	Columns int
	Spacing float32
	Origin  mgl32.Vec3
}

// Transform places element index at column index%Columns and row index/Columns.
func (g Grid) Transform(index int) transform.Transform {
	cols := max(g.Columns, 1)
	x := float32(index % cols)
	z := float32(index / cols)
	return transform.At(g.Origin.Add(mgl32.Vec3{x * g.Spacing, 0, z * g.Spacing}))
}

// Ring spaces Count elements evenly on a circle of Radius around Axis.
type Ring struct {
	Radius float32
	Count  int
	Axis   mgl32.Vec3
}

// Transform places element index at angle 2*pi*index/Count.
func (r Ring) Transform(index int) transform.Transform {
	axis := r.Axis
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	axis = axis.Normalize()

	ref := mgl32.Vec3{1, 0, 0}
	if math.Abs(float64(axis.Dot(ref))) > 0.9 {
		ref = mgl32.Vec3{0, 0, 1}
	}
	start := axis.Cross(ref).Normalize().Mul(r.Radius)

	angle := 2 * math.Pi * float32(index) / float32(max(r.Count, 1))
	return transform.At(mgl32.QuatRotate(angle, axis).Rotate(start))
}

// Spiral winds elements around the Y axis, turning AngleStep radians and climbing Rise
// units per element.
type Spiral struct {
	Radius    float32
	AngleStep float32
	Rise      float32
}

// Transform places element index on the spiral.
func (s Spiral) Transform(index int) transform.Transform {
	angle := float64(s.AngleStep) * float64(index)
	return transform.At(mgl32.Vec3{
		s.Radius * float32(math.Sin(angle)),
		s.Rise * float32(index),
		s.Radius * float32(math.Cos(angle)),
	})
}

// Column stacks elements in a straight line, Step apart.
type Column struct {
	Step mgl32.Vec3
}

// Transform places element index at index*Step.
func (c Column) Transform(index int) transform.Transform {
	return transform.At(c.Step.Mul(float32(index)))
}
