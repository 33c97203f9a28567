package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// Bindings of the material bind group (group 0 in the object pipeline).
const (
	BindingDiffuseTexture = 0
	BindingDiffuseSampler = 1
	BindingParams         = 2
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (32 bytes).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the GPU-aligned uniform carrying the untextured material properties.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialParamsSource).
// Size: 32 bytes.
type GPUMaterialParams struct {
	DiffuseColor  [4]float32 // offset  0: RGBA multiplier applied to the diffuse texture
	SpecularColor [3]float32 // offset 16: specular RGB
	Shininess     float32    // offset 28: Blinn-Phong exponent
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.DiffuseColor[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.SpecularColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.Shininess))
	return buf
}
