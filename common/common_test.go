package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, float32(32), Coalesce(float32(0), 32))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(5, -1, 1))
	assert.Equal(t, -1, Clamp(-5, -1, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint32(256), AlignUp(12, 256))
	assert.Equal(t, uint32(256), AlignUp(256, 256))
	assert.Equal(t, uint32(512), AlignUp(257, 256))
	assert.Equal(t, uint32(0), AlignUp(0, 256))
}

func TestSolidTexture(t *testing.T) {
	tex := SolidTexture([4]float32{1, 0, 0.5, 2})
	assert.Equal(t, []byte{255, 0, 128, 255}, tex.Pixels)
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
}

func encodeTestImage(t *testing.T, enc func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, enc(&buf, img))
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	cases := map[string]func(*bytes.Buffer, image.Image) error{
		"png": func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) },
		"bmp": func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) },
	}
	for name, enc := range cases {
		t.Run(name, func(t *testing.T) {
			tex := &ImportedTexture{Data: encodeTestImage(t, enc)}
			staged, err := tex.Decode()
			require.NoError(t, err)
			assert.Equal(t, uint32(2), staged.Width)
			assert.Equal(t, uint32(3), staged.Height)
			assert.Len(t, staged.Pixels, 2*3*4)
			off := (2*2 + 1) * 4
			assert.Equal(t, []byte{10, 20, 30, 255}, staged.Pixels[off:off+4])
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	var nilTex *ImportedTexture
	_, err := nilTex.Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{}).Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{Path: "does/not/exist.png"}).Decode()
	assert.Error(t, err)
}
