package scene

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxInstances is the capacity of the GPU instance buffer. A frame that expands to more
// instances than this is a precondition violation.
const MaxInstances = 131072

// InstanceRawSource is the canonical WGSL definition of the InstanceInput struct.
// Matches InstanceRaw layout exactly (100 bytes, shader locations 5-11).
//
//go:embed assets/instance.wgsl
var InstanceRawSource string

// InstanceRaw is the per-instance vertex data bound at vertex buffer slot 1.
// Both matrices are column-major. For light instances the third row of Normal
// carries the light colour instead of normal data.
// Size: 100 bytes.
type InstanceRaw struct {
	Model  [16]float32 // offset  0: model matrix, locations 5-8
	Normal [9]float32  // offset 64: normal matrix, locations 9-11
}

// NewInstanceRaw builds the instance data for a single world placement.
//
// Parameters:
//   - t: the composed instance transform
//
// Returns:
//   - InstanceRaw: the model and normal matrices of t
func NewInstanceRaw(t transform.Transform) InstanceRaw {
	return InstanceRaw{
		Model:  [16]float32(t.Matrix()),
		Normal: [9]float32(t.NormalMatrix()),
	}
}

// SetColor overwrites the third row of the normal matrix (elements 2, 5 and 8) with c.
// The light pipeline reads it back as the marker colour.
//
// Parameters:
//   - c: the RGB colour
func (r *InstanceRaw) SetColor(c mgl32.Vec3) {
	r.Normal[2] = c[0]
	r.Normal[5] = c[1]
	r.Normal[8] = c[2]
}

// Color reads the colour stored by SetColor.
//
// Returns:
//   - mgl32.Vec3: the RGB colour
func (r *InstanceRaw) Color() mgl32.Vec3 {
	return mgl32.Vec3{r.Normal[2], r.Normal[5], r.Normal[8]}
}

// Size returns the size of the InstanceRaw struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (100)
func (r *InstanceRaw) Size() int {
	return int(unsafe.Sizeof(*r))
}

func (r *InstanceRaw) marshalInto(buf []byte) {
	for i, v := range r.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range r.Normal {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
}

// MarshalInstances packs instances into one contiguous upload buffer.
//
// Parameters:
//   - instances: the instances to pack
//
// Returns:
//   - []byte: the packed bytes, 100 per instance
func MarshalInstances(instances []InstanceRaw) []byte {
	const stride = 100
	buf := make([]byte, len(instances)*stride)
	for i := range instances {
		instances[i].marshalInto(buf[i*stride:])
	}
	return buf
}

// InstanceBufferLayout describes InstanceRaw for vertex buffer slot 1.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-instance layout, locations 5-11
func InstanceBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 100,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 6},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 7},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 8},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 64, ShaderLocation: 9},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 76, ShaderLocation: 10},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 88, ShaderLocation: 11},
		},
	}
}
