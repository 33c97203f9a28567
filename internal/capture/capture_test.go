package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"png", "bmp", "tiff"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("gif")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEncodeRoundTrip(t *testing.T) {
	src := solid(4, 3, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	decoders := map[Format]func(*bytes.Reader) (image.Image, error){
		FormatPNG:  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		FormatBMP:  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		FormatTIFF: func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}
	for f, decode := range decoders {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, f))

			got, err := decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), got.Bounds())
			r, g, b, a := got.At(2, 1).RGBA()
			assert.Equal(t, []uint32{0xffff, 0x8080, 0, 0xffff}, []uint32{r, g, b, a})
		})
	}

	assert.ErrorIs(t, Encode(&bytes.Buffer{}, src, Format("jpeg")), ErrUnknownFormat)
}

func TestFrameWriterWritesNumberedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	core, logs := observer.New(zapcore.DebugLevel)

	w, err := NewFrameWriter(dir, FormatPNG, WithWorkers(2), WithPrefix("shot"), WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shot_00007.png"), w.Path(7))

	img := solid(8, 8, color.RGBA{A: 255})
	for i := 0; i < 5; i++ {
		img.SetRGBA(0, 0, color.RGBA{R: uint8(i * 50), A: 255})
		require.NoError(t, w.Frame(i, img))
	}
	require.NoError(t, w.Wait())
	defer w.Close()
	assert.Equal(t, 5, w.Written())
	assert.Equal(t, 5, logs.FilterMessage("frame written").Len())

	for i := 0; i < 5; i++ {
		f, err := os.Open(w.Path(i))
		require.NoError(t, err)
		decoded, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		r, _, _, _ := decoded.At(0, 0).RGBA()
		assert.Equal(t, uint32(i*50)*0x101, r, "frame %d kept its own pixels", i)
	}
}

func TestFrameWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewFrameWriter(t.TempDir(), Format("webp"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFrameWriterReportsWriteErrors(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFrameWriter(dir, FormatBMP, WithWorkers(1))
	require.NoError(t, err)

	// a directory in the way of the output file makes Create fail
	require.NoError(t, os.Mkdir(w.Path(0), 0o755))

	_ = w.Frame(0, solid(2, 2, color.RGBA{A: 255}))
	_ = w.Frame(1, solid(2, 2, color.RGBA{A: 255}))

	err = w.Wait()
	require.Error(t, err)
	assert.ErrorContains(t, err, "capture: create "+w.Path(0))
	assert.Equal(t, 1, w.Written())

	_, statErr := os.Stat(w.Path(1))
	assert.NoError(t, statErr)
	assert.Error(t, w.Close())
}

func TestFrameWriterWithoutFramesStartsNoWorkers(t *testing.T) {
	before := runtime.NumGoroutine()
	for range 10 {
		w, err := NewFrameWriter(t.TempDir(), FormatPNG, WithWorkers(4))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
}

func TestFrameWriterCloseStopsPoolAndRejectsFrames(t *testing.T) {
	w, err := NewFrameWriter(t.TempDir(), FormatBMP, WithWorkers(2))
	require.NoError(t, err)

	require.NoError(t, w.Frame(0, solid(2, 2, color.RGBA{G: 255, A: 255})))
	require.NotNil(t, w.(*frameWriter).pool)

	require.NoError(t, w.Close())
	assert.Nil(t, w.(*frameWriter).pool)
	assert.Equal(t, 1, w.Written())
	_, statErr := os.Stat(w.Path(0))
	assert.NoError(t, statErr)

	assert.ErrorIs(t, w.Frame(1, solid(2, 2, color.RGBA{A: 255})), ErrWriterClosed)
	assert.NoError(t, w.Close())
	assert.Equal(t, 1, w.Written())
}
