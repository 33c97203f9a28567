package renderer

import (
	"fmt"
	"image"

	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// bytesPerPixel is the texel size of the RGBA8 offscreen target.
const bytesPerPixel = 4

// PaddedBytesPerRow returns the row stride of a texture-to-buffer copy for width RGBA8 texels,
// rounded up to wgpu.CopyBytesPerRowAlignment.
//
// Parameters:
//   - width: the texture width in pixels
//
// Returns:
//   - uint32: the padded stride in bytes
func PaddedBytesPerRow(width uint32) uint32 {
	return common.AlignUp(width*bytesPerPixel, wgpu.CopyBytesPerRowAlignment)
}

// UnpadRows strips the per-row copy padding from a mapped staging buffer.
//
// Parameters:
//   - padded: the mapped bytes, at least stride*height long
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - stride: the padded row stride in bytes
//
// Returns:
//   - []byte: exactly width*height*4 tightly packed bytes
//   - error: error if padded is too short or stride is smaller than a row
func UnpadRows(padded []byte, width, height, stride uint32) ([]byte, error) {
	row := width * bytesPerPixel
	if stride < row {
		return nil, fmt.Errorf("stride %d is smaller than row size %d", stride, row)
	}
	if uint64(len(padded)) < uint64(stride)*uint64(height) {
		return nil, fmt.Errorf("staging data is %d bytes, need %d", len(padded), uint64(stride)*uint64(height))
	}

	out := make([]byte, int(row)*int(height))
	for y := range height {
		copy(out[y*row:(y+1)*row], padded[y*stride:y*stride+row])
	}
	return out, nil
}

// newRGBA wraps tightly packed RGBA8 pixels in an image without copying.
func newRGBA(pix []byte, width, height uint32) *image.RGBA {
	return &image.RGBA{
		Pix:    pix,
		Stride: int(width * bytesPerPixel),
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
}
