package material

import (
	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	diffuseColor      [4]float32
	specularColor     [3]float32
	shininess         float32
	diffuseTexture    *common.ImportedTexture
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material: surface properties read from
// the model's material library plus the GPU bind group that exposes them to the
// object pipeline.
//
// Surface properties are fixed at load time. The bind group provider is attached by
// the Renderer when the owning model is uploaded.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// DiffuseColor retrieves the RGBA diffuse multiplier.
	//
	// Returns:
	//   - [4]float32: the diffuse colour
	DiffuseColor() [4]float32

	// DiffuseTexture retrieves the diffuse texture, or nil when the material is untextured.
	// Untextured materials are bound with a 1x1 white texture.
	//
	// Returns:
	//   - *common.ImportedTexture: the diffuse texture, or nil
	DiffuseTexture() *common.ImportedTexture

	// Params returns the uniform block written to the BindingParams buffer.
	//
	// Returns:
	//   - GPUMaterialParams: the GPU-aligned parameters
	Params() GPUMaterialParams

	// BindGroupProvider returns the provider holding this material's GPU bind group, or nil before upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider attaches the GPU resources created for this material.
	//
	// Parameters:
	//   - provider: the bind group provider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a white, untextured Material with the given options applied.
//
// Parameters:
//   - options: functional options configuring the material
//
// Returns:
//   - Material: the new material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		diffuseColor:  [4]float32{1, 1, 1, 1},
		specularColor: [3]float32{0.5, 0.5, 0.5},
		shininess:     32,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromImported builds a Material from a material library entry.
//
// Parameters:
//   - im: the imported material
//
// Returns:
//   - Material: the new material
func FromImported(im common.ImportedMaterial) Material {
	return NewMaterial(
		WithName(im.Name),
		WithDiffuseColor(im.DiffuseColor),
		WithSpecular(im.SpecularColor, common.Coalesce(im.Shininess, 32)),
		WithDiffuseTexture(im.DiffuseTexture),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) DiffuseColor() [4]float32 {
	return m.diffuseColor
}

func (m *material) DiffuseTexture() *common.ImportedTexture {
	return m.diffuseTexture
}

func (m *material) Params() GPUMaterialParams {
	return GPUMaterialParams{
		DiffuseColor:  m.diffuseColor,
		SpecularColor: m.specularColor,
		Shininess:     m.shininess,
	}
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
