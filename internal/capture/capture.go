package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

var (
	// ErrUnknownFormat is returned by ParseFormat and Encode for unsupported encodings.
	ErrUnknownFormat = errors.New("capture: unknown image format")

	// ErrWriterClosed is returned by Frame after Close.
	ErrWriterClosed = errors.New("capture: frame writer closed")
)

// ParseFormat maps a config value to a Format.
//
// Parameters:
//   - s: "png", "bmp" or "tiff"
//
// Returns:
//   - Format: the format
//   - error: ErrUnknownFormat for any other value
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPNG, FormatBMP, FormatTIFF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encode writes img to w in format f.
//
// Parameters:
//   - w: the destination
//   - img: the image to encode
//   - f: the encoding
//
// Returns:
//   - error: ErrUnknownFormat or the encoder error
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// frameWriter is the implementation of the FrameWriter interface.
type frameWriter struct {
	dir     string
	prefix  string
	format  Format
	workers int
	logger  *zap.Logger

	wg sync.WaitGroup

	mu      sync.Mutex
	pool    worker.DynamicWorkerPool // started by the first Frame
	closed  bool
	errs    []error
	written int
}

// FrameWriter encodes headless frames to numbered files on a worker pool.
// Frame copies the pixels before returning, so callers may reuse the image.
type FrameWriter interface {
	// Frame queues img for encoding as frame number frame.
	//
	// Parameters:
	//   - frame: the frame number used in the file name
	//   - img: the rendered image
	//
	// Returns:
	//   - error: the first encoding error of an earlier frame, if any
	Frame(frame int, img *image.RGBA) error

	// Wait blocks until every queued frame is written.
	//
	// Returns:
	//   - error: every encoding error joined, or nil
	Wait() error

	// Close waits for queued frames and stops the encoding workers. Later calls to
	// Frame return ErrWriterClosed. Safe to call more than once.
	//
	// Returns:
	//   - error: every encoding error joined, or nil
	Close() error

	// Path returns the file a frame is written to.
	//
	// Parameters:
	//   - frame: the frame number
	//
	// Returns:
	//   - string: the output path
	Path(frame int) string

	// Written returns the number of files completed so far.
	//
	// Returns:
	//   - int: completed frames
	Written() int
}

var _ FrameWriter = &frameWriter{}

// NewFrameWriter creates dir if needed. The encoding pool starts with the first frame.
//
// Parameters:
//   - dir: the output directory
//   - format: the image encoding
//   - options: functional options configuring the writer
//
// Returns:
//   - FrameWriter: the writer
//   - error: ErrUnknownFormat or a directory creation error
func NewFrameWriter(dir string, format Format, options ...FrameWriterOption) (FrameWriter, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	w := &frameWriter{
		dir:     dir,
		prefix:  "frame",
		format:  format,
		workers: 4,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("capture: create %s: %w", dir, err)
	}
	return w, nil
}

func (w *frameWriter) Frame(frame int, img *image.RGBA) error {
	snapshot := &image.RGBA{
		Pix:    append([]byte(nil), img.Pix...),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	path := w.Path(frame)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWriterClosed
	}
	if w.pool == nil {
		w.pool = worker.NewDynamicWorkerPool(w.workers, 256, 1*time.Second)
	}
	pool := w.pool
	w.wg.Add(1)
	w.mu.Unlock()

	pool.SubmitTask(worker.Task{
		ID: frame,
		Do: func() (any, error) {
			defer w.wg.Done()
			err := w.writeFile(path, snapshot)
			w.mu.Lock()
			defer w.mu.Unlock()
			if err != nil {
				w.errs = append(w.errs, err)
				w.logger.Error("frame encode failed", zap.Int("frame", frame), zap.Error(err))
				return nil, err
			}
			w.written++
			w.logger.Debug("frame written", zap.Int("frame", frame), zap.String("path", path))
			return path, nil
		},
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.errs) > 0 {
		return w.errs[0]
	}
	return nil
}

func (w *frameWriter) Wait() error {
	w.wg.Wait()
	w.mu.Lock()
	defer w.mu.Unlock()
	return errors.Join(w.errs...)
}

func (w *frameWriter) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	err := w.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pool != nil {
		w.pool.Stop()
		w.pool = nil
	}
	return err
}

func (w *frameWriter) Path(frame int) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%05d.%s", w.prefix, frame, w.format))
}

func (w *frameWriter) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *frameWriter) writeFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: create %s: %w", path, err)
	}
	if err := Encode(f, img, w.format); err != nil {
		f.Close()
		return fmt.Errorf("capture: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("capture: close %s: %w", path, err)
	}
	return nil
}
