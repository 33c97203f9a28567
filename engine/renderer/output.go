package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
)

// OutputMode selects where the Renderer delivers finished frames.
type OutputMode int

const (
	// OutputModeSurface presents frames to a window surface.
	OutputModeSurface OutputMode = iota

	// OutputModeBuffer renders offscreen and copies each frame to a CPU-readable staging buffer.
	OutputModeBuffer
)

// String returns the configuration name of the mode.
func (m OutputMode) String() string {
	switch m {
	case OutputModeSurface:
		return "window"
	case OutputModeBuffer:
		return "headless"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// offscreenFormat is the texel format of the headless colour target and of the image returned by ImageBuffer.
const offscreenFormat = wgpu.TextureFormatRGBA8UnormSrgb

// output is the frame destination: exactly one of surface or buffer is set, selected by mode.
type output struct {
	mode    OutputMode
	surface *surfaceOutput
	buffer  *bufferOutput
}

// surfaceOutput presents to a window surface.
type surfaceOutput struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	config  *wgpu.SurfaceConfiguration
	format  wgpu.TextureFormat

	// acquired frame, held between acquire and present
	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView
}

// bufferOutput renders into an offscreen texture copied to a staging buffer every frame.
type bufferOutput struct {
	width             uint32
	height            uint32
	paddedBytesPerRow uint32

	texture *wgpu.Texture
	view    *wgpu.TextureView
	staging *wgpu.Buffer
}

func newSurfaceOutput(backend RendererBackend, width, height uint32, mode PresentMode) (*output, error) {
	surface := backend.Surface()
	if surface == nil {
		return nil, errors.New("renderer: surface output requires a window")
	}
	capabilities := surface.GetCapabilities(backend.Adapter())
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return nil, errors.New("renderer: surface reports no supported formats")
	}

	so := &surfaceOutput{
		surface: surface,
		adapter: backend.Adapter(),
		device:  backend.Device(),
		format:  capabilities.Formats[0],
		config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      capabilities.Formats[0],
			Width:       width,
			Height:      height,
			PresentMode: mode.wgpuPresentMode(),
			AlphaMode:   capabilities.AlphaModes[0],
		},
	}
	so.surface.Configure(so.adapter, so.device, so.config)

	return &output{mode: OutputModeSurface, surface: so}, nil
}

func newBufferOutput(backend RendererBackend, width, height uint32) (*output, error) {
	bo := &bufferOutput{}
	if err := bo.allocate(backend, width, height); err != nil {
		return nil, err
	}
	return &output{mode: OutputModeBuffer, buffer: bo}, nil
}

// format returns the texel format of the view returned by acquire.
func (o *output) format() wgpu.TextureFormat {
	switch o.mode {
	case OutputModeSurface:
		return o.surface.format
	default:
		return offscreenFormat
	}
}

// size returns the current output dimensions in pixels.
func (o *output) size() (uint32, uint32) {
	switch o.mode {
	case OutputModeSurface:
		return o.surface.config.Width, o.surface.config.Height
	default:
		return o.buffer.width, o.buffer.height
	}
}

// resize reconfigures the surface in place, or reallocates the offscreen texture and staging buffer.
func (o *output) resize(backend RendererBackend, width, height uint32) error {
	switch o.mode {
	case OutputModeSurface:
		o.surface.config.Width = width
		o.surface.config.Height = height
		o.surface.surface.Configure(o.surface.adapter, o.surface.device, o.surface.config)
		return nil
	default:
		o.buffer.release()
		return o.buffer.allocate(backend, width, height)
	}
}

// acquire returns the view the final passes of the frame draw into.
func (o *output) acquire() (*wgpu.TextureView, error) {
	switch o.mode {
	case OutputModeSurface:
		return o.surface.acquire()
	default:
		return o.buffer.view, nil
	}
}

// encodeCopy records the offscreen texture to staging buffer copy. No-op for a surface.
func (o *output) encodeCopy(encoder *wgpu.CommandEncoder) {
	if o.mode != OutputModeBuffer {
		return
	}
	b := o.buffer
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  b.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: b.staging,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  b.paddedBytesPerRow,
				RowsPerImage: b.height,
			},
		},
		&wgpu.Extent3D{
			Width:              b.width,
			Height:             b.height,
			DepthOrArrayLayers: 1,
		},
	)
}

// present shows the acquired surface frame. No-op for the offscreen buffer.
func (o *output) present() {
	if o.mode != OutputModeSurface {
		return
	}
	o.surface.surface.Present()
	o.surface.releaseFrame()
}

// discard drops an acquired surface frame without presenting it.
func (o *output) discard() {
	if o.mode == OutputModeSurface {
		o.surface.releaseFrame()
	}
}

// image maps the staging buffer and returns the last rendered frame.
func (o *output) image(backend RendererBackend) (*image.RGBA, error) {
	if o.mode != OutputModeBuffer {
		return nil, ErrNotHeadless
	}
	b := o.buffer
	padded, err := backend.ReadBuffer(b.staging, b.stagingSize())
	if err != nil {
		return nil, err
	}
	pix, err := UnpadRows(padded, b.width, b.height, b.paddedBytesPerRow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadback, err)
	}
	return newRGBA(pix, b.width, b.height), nil
}

func (o *output) release() {
	switch o.mode {
	case OutputModeSurface:
		o.surface.releaseFrame()
	default:
		o.buffer.release()
	}
}

func (s *surfaceOutput) acquire() (*wgpu.TextureView, error) {
	if s.frameTexture != nil {
		return nil, errors.New("renderer: previous surface frame not yet presented")
	}

	surfaceTexture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifySurfaceError(err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}

	s.frameTexture = surfaceTexture
	s.frameView = view
	return view, nil
}

func (s *surfaceOutput) releaseFrame() {
	if s.frameView != nil {
		s.frameView.Release()
		s.frameView = nil
	}
	if s.frameTexture != nil {
		s.frameTexture.Release()
		s.frameTexture = nil
	}
}

// setDims records the dimensions and the copy stride they require.
func (b *bufferOutput) setDims(width, height uint32) {
	b.width = width
	b.height = height
	b.paddedBytesPerRow = PaddedBytesPerRow(width)
}

// stagingSize returns the staging buffer size in bytes.
func (b *bufferOutput) stagingSize() uint64 {
	return uint64(b.paddedBytesPerRow) * uint64(b.height)
}

func (b *bufferOutput) allocate(backend RendererBackend, width, height uint32) error {
	b.setDims(width, height)

	tex, view, err := backend.CreateRenderTarget("Offscreen Target", width, height, offscreenFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageCopySrc)
	if err != nil {
		return fmt.Errorf("renderer: offscreen target: %w", err)
	}

	staging, err := backend.CreateBuffer("Offscreen Staging Buffer", b.stagingSize(),
		wgpu.BufferUsageCopyDst|wgpu.BufferUsageMapRead)
	if err != nil {
		view.Release()
		tex.Release()
		return fmt.Errorf("renderer: offscreen staging buffer: %w", err)
	}

	b.texture = tex
	b.view = view
	b.staging = staging
	return nil
}

func (b *bufferOutput) release() {
	if b.staging != nil {
		b.staging.Release()
		b.staging = nil
	}
	if b.view != nil {
		b.view.Release()
		b.view = nil
	}
	if b.texture != nil {
		b.texture.Release()
		b.texture = nil
	}
}
