package renderer

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/Carmen-Shannon/vike-go/engine/camera"
	"github.com/Carmen-Shannon/vike-go/engine/light"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/material"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
	"github.com/Carmen-Shannon/vike-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Render target formats of the scene pass.
const (
	HDRFormat   = wgpu.TextureFormatRGBA16Float
	DepthFormat = wgpu.TextureFormatDepth32Float
)

// Bind group layout keys shared between pipelines.
const (
	layoutMaterial = "material"
	layoutCamera   = "camera"
	layoutLights   = "lights"
	layoutTonemap  = "tonemap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backend RendererBackend
	out     *output
	cam     camera.Camera

	pipelineCache map[string]pipeline.Pipeline
	layouts       map[string]*wgpu.BindGroupLayout
	descriptors   map[string]wgpu.BindGroupLayoutDescriptor

	// Pre-creation config collected from builder options
	mode                 OutputMode
	width                uint32
	height               uint32
	win                  window.Window
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color
	debugAxis            bool

	// Frame resources
	depthTexture    *wgpu.Texture
	depthView       *wgpu.TextureView
	tonemapGroup    bind_group_provider.BindGroupProvider
	lightGroup      bind_group_provider.BindGroupProvider
	instanceBuffer  *wgpu.Buffer
	defaultMaterial material.Material
}

// Renderer draws a GameObjectStore each frame and delivers the result either to a window
// surface or to an offscreen buffer, chosen once at construction.
//
// Each Render compiles the store, uploads the light uniform, camera uniform and instance
// buffer, draws every object range and then every light range into an HDR target, tonemaps
// into the output and optionally overlays the world axes.
type Renderer interface {
	// Render draws one frame of the store.
	// Surface acquire failures wrap ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout or ErrOutOfMemory.
	// Panics when the compiled frame exceeds scene.MaxInstances.
	//
	// Parameters:
	//   - store: the scene to draw
	//
	// Returns:
	//   - error: an error if the frame could not be acquired or submitted
	Render(store scene.GameObjectStore) error

	// Resize reconfigures the output, the HDR and depth targets and the camera aspect.
	// Zero dimensions are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the targets could not be recreated
	Resize(width, height uint32) error

	// ImageBuffer reads back the last frame rendered to the offscreen buffer.
	//
	// Returns:
	//   - *image.RGBA: the frame, width*height*4 bytes with no row padding
	//   - error: ErrNotHeadless for a surface renderer, or an error wrapping ErrReadback
	ImageBuffer() (*image.RGBA, error)

	// Camera returns the camera whose uniform is uploaded each frame.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Size returns the current output dimensions.
	//
	// Returns:
	//   - uint32: width in pixels
	//   - uint32: height in pixels
	Size() (uint32, uint32)

	// Mode returns the output mode chosen at construction.
	//
	// Returns:
	//   - OutputMode: the output mode
	Mode() OutputMode

	// Pipeline retrieves the registered Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the shader key of the pipeline
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// SetDebugAxis toggles the world axis overlay.
	//
	// Parameters:
	//   - enabled: true to draw the overlay
	SetDebugAxis(enabled bool)

	// CreateMeshBuffers uploads one mesh and returns a provider holding its vertex and index buffers.
	//
	// Parameters:
	//   - label: debug label for the buffers
	//   - vertexData: packed vertices
	//   - indexData: packed uint32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	//   - error: an error if buffer creation fails
	CreateMeshBuffers(label string, vertexData, indexData []byte, indexCount uint32) (bind_group_provider.BindGroupProvider, error)

	// CreateMaterial uploads the material's diffuse texture, sampler and parameters and attaches
	// the resulting bind group to it. Untextured materials are bound with a 1x1 white texture.
	//
	// Parameters:
	//   - mat: the material to upload
	//
	// Returns:
	//   - error: an error if the texture cannot be decoded or GPU creation fails
	CreateMaterial(mat material.Material) error

	// Close releases every GPU resource owned by the renderer.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer requests a GPU device, creates the output selected by WithOutputMode, and
// registers the object, light, tonemap and debug axis pipelines.
//
// Parameters:
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: ErrNoAdapter, ErrNoDevice, an invalid configuration or a pipeline failure
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        zap.NewNop(),
		pipelineCache: make(map[string]pipeline.Pipeline),
		layouts:       make(map[string]*wgpu.BindGroupLayout),
		descriptors:   make(map[string]wgpu.BindGroupLayoutDescriptor),
		mode:          OutputModeSurface,
		presentMode:   PresentModeVSync,
		clearColor:    wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if err := r.resolveSize(); err != nil {
		return nil, err
	}

	var surfaceDescriptor *wgpu.SurfaceDescriptor
	if r.mode == OutputModeSurface {
		if r.win == nil {
			return nil, errors.New("renderer: surface output requires a window")
		}
		surfaceDescriptor = r.win.SurfaceDescriptor()
	}
	backend, err := newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter)
	if err != nil {
		return nil, err
	}
	r.backend = backend

	switch r.mode {
	case OutputModeSurface:
		r.out, err = newSurfaceOutput(r.backend, r.width, r.height, r.presentMode)
	case OutputModeBuffer:
		r.out, err = newBufferOutput(r.backend, r.width, r.height)
	default:
		err = fmt.Errorf("renderer: unknown output mode %d", int(r.mode))
	}
	if err != nil {
		r.backend.Release()
		return nil, err
	}

	if r.cam == nil {
		r.cam = camera.NewCamera()
	}
	r.cam.Resize(r.width, r.height)

	if err := r.init(); err != nil {
		r.Close()
		return nil, err
	}

	r.logger.Info("renderer ready",
		zap.Stringer("mode", r.mode),
		zap.Uint32("width", r.width),
		zap.Uint32("height", r.height),
		zap.Bool("fallback_adapter", r.forceFallbackAdapter),
	)
	return r, nil
}

// resolveSize falls back to the window framebuffer size when no size was configured.
func (r *renderer) resolveSize() error {
	if (r.width == 0 || r.height == 0) && r.win != nil {
		w, h := r.win.FramebufferSize()
		r.width, r.height = uint32(max(w, 0)), uint32(max(h, 0))
	}
	if r.width == 0 || r.height == 0 {
		return fmt.Errorf("renderer: output size must be non-zero, got %dx%d", r.width, r.height)
	}
	return nil
}

// init creates the shared layouts, the pipelines and every frame resource.
func (r *renderer) init() error {
	if err := r.registerPipelines(); err != nil {
		return err
	}

	camGroup := bind_group_provider.NewBindGroupProvider("Camera", bind_group_provider.WithGroup(1))
	if err := r.backend.InitBindGroup(camGroup, r.layouts[layoutCamera], r.descriptors[layoutCamera],
		map[int]uint64{0: uint64((&camera.GPUCameraUniform{}).Size())}); err != nil {
		return fmt.Errorf("renderer: camera bind group: %w", err)
	}
	r.cam.SetBindGroupProvider(camGroup)

	r.lightGroup = bind_group_provider.NewBindGroupProvider("Lights", bind_group_provider.WithGroup(2))
	if err := r.backend.InitBindGroup(r.lightGroup, r.layouts[layoutLights], r.descriptors[layoutLights],
		map[int]uint64{0: uint64((&light.LightUniform{}).Size())}); err != nil {
		return fmt.Errorf("renderer: light bind group: %w", err)
	}

	instanceSize := uint64(scene.MaxInstances) * uint64((&scene.InstanceRaw{}).Size())
	buf, err := r.backend.CreateBuffer("Instance Buffer", instanceSize, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("renderer: instance buffer: %w", err)
	}
	r.instanceBuffer = buf

	r.defaultMaterial = material.NewMaterial(material.WithName("default"))
	if err := r.createMaterial(r.defaultMaterial); err != nil {
		return err
	}

	return r.createTargets(r.width, r.height)
}

// createTargets (re)creates the HDR colour target, the depth target and the tonemap bind group.
func (r *renderer) createTargets(width, height uint32) error {
	r.releaseTargets()

	hdrTex, hdrView, err := r.backend.CreateRenderTarget("HDR Target", width, height, HDRFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return fmt.Errorf("renderer: hdr target: %w", err)
	}
	tonemap := bind_group_provider.NewBindGroupProvider("Tonemap")
	tonemap.SetTexture(0, hdrTex, hdrView)
	if err := r.backend.InitSampler(tonemap, 1, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
	}); err != nil {
		tonemap.Release()
		return fmt.Errorf("renderer: tonemap sampler: %w", err)
	}
	if err := r.backend.InitBindGroup(tonemap, r.layouts[layoutTonemap], r.descriptors[layoutTonemap], nil); err != nil {
		tonemap.Release()
		return fmt.Errorf("renderer: tonemap bind group: %w", err)
	}
	r.tonemapGroup = tonemap

	depthTex, depthView, err := r.backend.CreateRenderTarget("Depth Texture", width, height, DepthFormat,
		wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return fmt.Errorf("renderer: depth target: %w", err)
	}
	r.depthTexture, r.depthView = depthTex, depthView

	return nil
}

func (r *renderer) releaseTargets() {
	if r.tonemapGroup != nil {
		r.tonemapGroup.Release()
		r.tonemapGroup = nil
	}
	if r.depthView != nil {
		r.depthView.Release()
		r.depthView = nil
	}
	if r.depthTexture != nil {
		r.depthTexture.Release()
		r.depthTexture = nil
	}
}

func (r *renderer) Render(store scene.GameObjectStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame := store.PreFrame()
	frame.AssertCapacity()
	r.uploadFrame(&frame)

	target, err := r.out.acquire()
	if err != nil {
		return err
	}

	encoder, err := r.backend.Device().CreateCommandEncoder(nil)
	if err != nil {
		r.out.discard()
		return err
	}

	r.encodeScenePass(encoder, &frame)
	r.encodeTonemapPass(encoder, target)
	if r.debugAxis {
		r.encodeDebugAxisPass(encoder, target)
	}
	r.out.encodeCopy(encoder)

	commandBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		r.out.discard()
		return err
	}
	r.backend.Queue().Submit(commandBuffer)
	commandBuffer.Release()

	r.out.present()
	return nil
}

// uploadFrame writes the light uniform, the camera uniform and the instance buffer.
func (r *renderer) uploadFrame(frame *scene.FrameData) {
	camUniform := r.cam.Uniform()
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.lightGroup, Binding: 0, Data: frame.LightUniform.Marshal()},
		{Provider: r.cam.BindGroupProvider(), Binding: 0, Data: camUniform.Marshal()},
	})
	if len(frame.Instances) > 0 {
		r.backend.Queue().WriteBuffer(r.instanceBuffer, 0, scene.MarshalInstances(frame.Instances))
	}
}

func (r *renderer) Resize(width, height uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width == 0 || height == 0 {
		return nil
	}
	if err := r.out.resize(r.backend, width, height); err != nil {
		return err
	}
	if err := r.createTargets(width, height); err != nil {
		return err
	}
	r.width, r.height = width, height
	r.cam.Resize(width, height)

	r.logger.Debug("renderer resized", zap.Uint32("width", width), zap.Uint32("height", height))
	return nil
}

func (r *renderer) ImageBuffer() (*image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.out.image(r.backend)
}

func (r *renderer) Camera() camera.Camera {
	return r.cam
}

func (r *renderer) Size() (uint32, uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.out.size()
}

func (r *renderer) Mode() OutputMode {
	return r.mode
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pipelineCache[key]
}

func (r *renderer) SetDebugAxis(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.debugAxis = enabled
}

func (r *renderer) CreateMeshBuffers(label string, vertexData, indexData []byte, indexCount uint32) (bind_group_provider.BindGroupProvider, error) {
	provider := bind_group_provider.NewBindGroupProvider(label)
	if err := r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount); err != nil {
		provider.Release()
		return nil, fmt.Errorf("renderer: mesh %q: %w", label, err)
	}
	return provider, nil
}

func (r *renderer) CreateMaterial(mat material.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.createMaterial(mat)
}

func (r *renderer) createMaterial(mat material.Material) error {
	staging := common.SolidTexture([4]float32{1, 1, 1, 1})
	var samplerData common.SamplerStagingData
	if tex := mat.DiffuseTexture(); tex != nil {
		decoded, err := tex.Decode()
		if err != nil {
			return fmt.Errorf("renderer: material %q: %w", mat.Name(), err)
		}
		staging = decoded
		if tex.SamplerData != nil {
			samplerData = *tex.SamplerData
		}
	}

	provider := bind_group_provider.NewBindGroupProvider("Material "+mat.Name(), bind_group_provider.WithGroup(0))
	if err := r.backend.InitTextureView(provider, material.BindingDiffuseTexture, staging); err != nil {
		provider.Release()
		return fmt.Errorf("renderer: material %q texture: %w", mat.Name(), err)
	}
	if err := r.backend.InitSampler(provider, material.BindingDiffuseSampler, samplerData); err != nil {
		provider.Release()
		return fmt.Errorf("renderer: material %q sampler: %w", mat.Name(), err)
	}
	params := mat.Params()
	if err := r.backend.InitBindGroup(provider, r.layouts[layoutMaterial], r.descriptors[layoutMaterial],
		map[int]uint64{material.BindingParams: uint64(params.Size())}); err != nil {
		provider.Release()
		return fmt.Errorf("renderer: material %q bind group: %w", mat.Name(), err)
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: material.BindingParams, Data: params.Marshal()},
	})

	if old := mat.BindGroupProvider(); old != nil {
		old.Release()
	}
	mat.SetBindGroupProvider(provider)
	return nil
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	for key, l := range r.layouts {
		l.Release()
		delete(r.layouts, key)
	}
	r.releaseTargets()
	if r.defaultMaterial != nil && r.defaultMaterial.BindGroupProvider() != nil {
		r.defaultMaterial.BindGroupProvider().Release()
	}
	if r.lightGroup != nil {
		r.lightGroup.Release()
		r.lightGroup = nil
	}
	if r.cam != nil && r.cam.BindGroupProvider() != nil {
		r.cam.BindGroupProvider().Release()
		r.cam.SetBindGroupProvider(nil)
	}
	if r.instanceBuffer != nil {
		r.instanceBuffer.Release()
		r.instanceBuffer = nil
	}
	if r.out != nil {
		r.out.release()
	}
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
}
