// Package transform holds the placement type shared by game objects, lights and array generators.
package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a decomposed placement in world space.
// Rotation holds Euler angles in radians applied about X, then Y, then Z.
// Scale components must be non-zero because the normal matrix divides by them.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// Identity returns a Transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func Identity() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// At returns a unit-scale, unrotated Transform positioned at p.
//
// Parameters:
//   - p: the world-space position
//
// Returns:
//   - Transform: the positioned transform
func At(p mgl32.Vec3) Transform {
	return Transform{Position: p, Scale: mgl32.Vec3{1, 1, 1}}
}

// Add composes t with an offset produced by an array generator.
// Positions and rotations are summed, scales are multiplied component-wise.
//
// Parameters:
//   - o: the offset transform
//
// Returns:
//   - Transform: the composite transform
func (t Transform) Add(o Transform) Transform {
	return Transform{
		Position: t.Position.Add(o.Position),
		Rotation: t.Rotation.Add(o.Rotation),
		Scale: mgl32.Vec3{
			t.Scale[0] * o.Scale[0],
			t.Scale[1] * o.Scale[1],
			t.Scale[2] * o.Scale[2],
		},
	}
}

// RotationMatrix returns Rz * Ry * Rx as a 3x3 matrix.
//
// Returns:
//   - mgl32.Mat3: the rotation matrix
func (t Transform) RotationMatrix() mgl32.Mat3 {
	return mgl32.Rotate3DZ(t.Rotation[2]).
		Mul3(mgl32.Rotate3DY(t.Rotation[1])).
		Mul3(mgl32.Rotate3DX(t.Rotation[0]))
}

// Matrix returns the model matrix T * R * S.
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func (t Transform) Matrix() mgl32.Mat4 {
	r := t.RotationMatrix().Mat4()
	s := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).Mul4(r).Mul4(s)
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of Matrix.
// With an orthonormal rotation this reduces to R * S^-1.
//
// Returns:
//   - mgl32.Mat3: the normal matrix
func (t Transform) NormalMatrix() mgl32.Mat3 {
	inv := mgl32.Diag3(mgl32.Vec3{1 / t.Scale[0], 1 / t.Scale[1], 1 / t.Scale[2]})
	return t.RotationMatrix().Mul3(inv)
}

// EulerFromQuat converts q to Euler angles matching the rotation order used by Transform.
//
// Parameters:
//   - q: the rotation quaternion
//
// Returns:
//   - mgl32.Vec3: rotation about X, Y and Z in radians
func EulerFromQuat(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4().Mat3()
	sy := -m.At(2, 0)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	return mgl32.Vec3{
		float32(math.Atan2(float64(m.At(2, 1)), float64(m.At(2, 2)))),
		float32(math.Asin(float64(sy))),
		float32(math.Atan2(float64(m.At(1, 0)), float64(m.At(0, 0)))),
	}
}
