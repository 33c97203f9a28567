package material

import (
	"github.com/Carmen-Shannon/vike-go/common"
)

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithDiffuseColor sets the RGBA diffuse multiplier.
//
// Parameters:
//   - color: the diffuse colour
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse colour
func WithDiffuseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseColor = color
	}
}

// WithSpecular sets the specular colour and exponent.
//
// Parameters:
//   - color: the specular RGB
//   - shininess: the Blinn-Phong exponent
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular terms
func WithSpecular(color [3]float32, shininess float32) MaterialBuilderOption {
	return func(m *material) {
		m.specularColor = color
		m.shininess = shininess
	}
}

// WithDiffuseTexture sets the diffuse texture. A nil texture leaves the material untextured.
//
// Parameters:
//   - tex: the diffuse texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture
func WithDiffuseTexture(tex *common.ImportedTexture) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseTexture = tex
	}
}
