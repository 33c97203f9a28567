package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxLights is the capacity of the light uniform block. Expanded light instances
// beyond this count are dropped from the uniform without error.
const MaxLights = 128

// GPULightSource is the canonical WGSL definition of the Light and LightUniform structs.
// The array length is the MAX_LIGHTS shader constant, substituted by the shader pre-processor.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single point light.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 32 bytes.
type GPULight struct {
	Position  [3]float32 // offset  0: world-space position
	Intensity float32    // offset 12: scalar multiplier
	Color     [3]float32 // offset 16: RGB colour
	_pad      float32    // offset 28: padding to 32 bytes
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 32)
	g.marshalInto(buf)
	return buf
}

func (g *GPULight) marshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], 0)
}

// LightUniform is the fixed-capacity light block bound to the fragment stage.
// Matches the WGSL LightUniform struct layout exactly (see GPULightSource).
// Size: 4112 bytes (128 lights, u32 count, padding to a 16-byte multiple).
type LightUniform struct {
	Lights [MaxLights]GPULight // offset    0: populated entries first, the rest zero
	Count  uint32              // offset 4096: populated entries, never above MaxLights
	_pad   [3]uint32           // offset 4100: padding to 4112 bytes
}

// Push appends l if capacity remains.
//
// Parameters:
//   - l: the light to append
//
// Returns:
//   - bool: false when the uniform is already full and l was dropped
func (u *LightUniform) Push(l GPULight) bool {
	if u.Count >= MaxLights {
		return false
	}
	u.Lights[u.Count] = l
	u.Count++
	return true
}

// Full reports whether every slot is populated.
//
// Returns:
//   - bool: true when Count equals MaxLights
func (u *LightUniform) Full() bool {
	return u.Count >= MaxLights
}

// Size returns the size of the LightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (4112)
func (u *LightUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the LightUniform into a byte buffer suitable for GPU upload.
// The count written is clamped to MaxLights.
//
// Returns:
//   - []byte: 4112-byte buffer ready for GPU upload
func (u *LightUniform) Marshal() []byte {
	lightSize := (&GPULight{}).Size()
	buf := make([]byte, u.Size())
	count := min(u.Count, MaxLights)
	for i := range count {
		u.Lights[i].marshalInto(buf[int(i)*lightSize:])
	}
	binary.LittleEndian.PutUint32(buf[MaxLights*lightSize:], count)
	return buf
}
