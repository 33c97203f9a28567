package renderer

import (
	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// wgpuPresentMode maps a PresentMode to the surface present mode.
func (m PresentMode) wgpuPresentMode() wgpu.PresentMode {
	switch m {
	case PresentModeVSync:
		return wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		return wgpu.PresentModeImmediate
	}
}

// RendererBackend owns the GPU device and creates every GPU resource the Renderer uses.
// It holds no per-frame state; frames are encoded by the Renderer against Device and Queue.
type RendererBackend interface {
	// Device returns the logical GPU device.
	Device() *wgpu.Device

	// Queue returns the device queue.
	Queue() *wgpu.Queue

	// Adapter returns the physical adapter the device was requested from.
	Adapter() *wgpu.Adapter

	// Surface returns the presentable surface, or nil for an offscreen backend.
	Surface() *wgpu.Surface

	// CreateBindGroupLayout creates a bind group layout from a shader-declared descriptor.
	//
	// Parameters:
	//   - descriptor: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	//   - error: an error if creation fails
	CreateBindGroupLayout(descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// RegisterRenderPipeline compiles the pipeline's shader and creates its GPU render pipeline
	// against the given bind group layouts, storing the result on p.
	//
	// Parameters:
	//   - p: the pipeline to create
	//   - layouts: the bind group layouts in group order
	//
	// Returns:
	//   - error: an error if shader or pipeline creation fails
	RegisterRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) error

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount uint32) error

	// InitBindGroup creates any missing uniform buffers for the layout's buffer entries and assembles
	// the bind group on provider. Texture and sampler entries must already be present on provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - layout: the created layout the bind group conforms to
	//   - descriptor: the descriptor layout was created from
	//   - bufferSizes: uniform buffer sizes keyed by binding index
	//
	// Returns:
	//   - error: an error if a resource is missing or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error

	// InitTextureView uploads RGBA8 staging data to a new sRGB texture and stores it on provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the texture on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// CreateRenderTarget creates a single-sampled 2D texture and its default view.
	//
	// Parameters:
	//   - label: debug label
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//   - format: texel format
	//   - usage: texture usage flags
	//
	// Returns:
	//   - *wgpu.Texture: the texture
	//   - *wgpu.TextureView: its view
	//   - error: an error if creation fails
	CreateRenderTarget(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreateBuffer creates an unmapped buffer.
	//
	// Parameters:
	//   - label: debug label
	//   - size: size in bytes
	//   - usage: buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an error if creation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// ReadBuffer maps size bytes of a MapRead buffer, blocking on the device until the map
	// completes, and returns a copy of the mapped range. The buffer is unmapped before returning.
	//
	// Parameters:
	//   - buf: the staging buffer
	//   - size: the number of bytes to read
	//
	// Returns:
	//   - []byte: the copied bytes
	//   - error: an error wrapping ErrReadback if mapping fails
	ReadBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error)

	// Release frees the device, adapter, surface and instance.
	Release()
}
