// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA8, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to linear filtering with repeat addressing.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	MaxAnisotropy                            uint16
}

// ImportedMaterial represents material properties read from a model's material library.
type ImportedMaterial struct {
	// Name is the material identifier (the MTL newmtl name).
	Name string

	// DiffuseColor is the Kd colour with the d/Tr opacity in alpha.
	DiffuseColor [4]float32

	// AmbientColor is the Ka colour.
	AmbientColor [3]float32

	// SpecularColor is the Ks colour.
	SpecularColor [3]float32

	// Shininess is the Ns exponent.
	Shininess float32

	// DiffuseTexture is the map_Kd texture, or nil.
	DiffuseTexture *ImportedTexture

	// NormalTexture is the map_Bump / norm texture, or nil.
	NormalTexture *ImportedTexture
}

// DefaultMaterial returns the material used for meshes that reference no material library.
//
// Returns:
//   - ImportedMaterial: a white, untextured material
func DefaultMaterial() ImportedMaterial {
	return ImportedMaterial{
		Name:          "default",
		DiffuseColor:  [4]float32{1, 1, 1, 1},
		SpecularColor: [3]float32{0.5, 0.5, 0.5},
		Shininess:     32,
	}
}

// ImportedTexture represents texture data referenced by a model file.
// Either Data holds encoded image bytes or Path names a file on disk.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse", "normal").
	Name string

	// Path is the file path for external textures.
	Path string

	// Data contains encoded image bytes for in-memory textures.
	Data []byte

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int

	// SamplerData overrides the default sampler when non-nil.
	SamplerData *SamplerStagingData
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP, TIFF and WebP.
//
// Returns:
//   - TextureStagingData: RGBA pixels and dimensions ready for upload
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(t.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	case t.Path != "":
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	default:
		return TextureStagingData{}, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}, nil
}

// SolidTexture returns a 1x1 RGBA texture filled with c.
//
// Parameters:
//   - c: the RGBA colour in [0, 1]
//
// Returns:
//   - TextureStagingData: the single-pixel staging data
func SolidTexture(c [4]float32) TextureStagingData {
	px := make([]byte, 4)
	for i := range px {
		px[i] = uint8(Clamp(c[i], 0, 1)*255 + 0.5)
	}
	return TextureStagingData{Pixels: px, Width: 1, Height: 1}
}
