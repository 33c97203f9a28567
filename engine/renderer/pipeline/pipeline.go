package pipeline

import (
	"github.com/Carmen-Shannon/vike-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// State is the fixed-function configuration a pipeline is created with.
type State struct {
	// VertexLayouts are the vertex buffer layouts in slot order.
	VertexLayouts []wgpu.VertexBufferLayout

	// TargetFormat is the colour attachment format.
	TargetFormat wgpu.TextureFormat

	// DepthFormat is the depth attachment format. wgpu.TextureFormatUndefined draws
	// without a depth attachment and ignores DepthTest and DepthWrite.
	DepthFormat wgpu.TextureFormat

	DepthTest  bool
	DepthWrite bool

	CullMode  wgpu.CullMode
	Topology  wgpu.PrimitiveTopology
	FrontFace wgpu.FrontFace
	WriteMask wgpu.ColorWriteMask

	// Blend is the colour target blend state; nil disables blending.
	Blend *wgpu.BlendState
}

// AlphaBlend is the conventional straight-alpha "over" blend.
var AlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key    string
	shader shader.Shader
	state  State

	// gpu is set once the backend has created the render pipeline.
	gpu *wgpu.RenderPipeline
}

// Pipeline pairs a shader with the fixed-function State it is drawn with, and owns the
// GPU render pipeline the backend creates from Descriptor.
type Pipeline interface {
	// PipelineKey returns the key the renderer looks this pipeline up by.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the shader providing the vertex and fragment entry points.
	//
	// Returns:
	//   - shader.Shader: the pipeline's shader
	Shader() shader.Shader

	// State returns a copy of the fixed-function configuration.
	//
	// Returns:
	//   - State: the configuration
	State() State

	// RenderPipeline returns the created GPU pipeline, or nil before creation.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// Descriptor assembles the render pipeline descriptor from the configuration.
	//
	// Parameters:
	//   - layout: the pipeline layout built from the shader's bind group layouts
	//   - module: the compiled shader module
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor ready for CreateRenderPipeline
	Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor

	// SetRenderPipeline stores the created GPU pipeline, releasing any previous one.
	//
	// Parameters:
	//   - rp: the WebGPU render pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)

	// Release frees the GPU pipeline. Safe to call more than once.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for key drawn with shader s.
// Defaults: Rgba16Float target, depth tested and written against Depth32Float,
// no culling, counter-clockwise triangle list, all channels written, no blending.
//
// Parameters:
//   - key: the pipeline key
//   - s: the shader providing both entry points
//   - opts: functional options adjusting the State
//
// Returns:
//   - Pipeline: the configured pipeline without a GPU object
func NewPipeline(key string, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:    key,
		shader: s,
		state: State{
			TargetFormat: wgpu.TextureFormatRGBA16Float,
			DepthFormat:  wgpu.TextureFormatDepth32Float,
			DepthTest:    true,
			DepthWrite:   true,
			CullMode:     wgpu.CullModeNone,
			Topology:     wgpu.PrimitiveTopologyTriangleList,
			FrontFace:    wgpu.FrontFaceCCW,
			WriteMask:    wgpu.ColorWriteMaskAll,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) State() State {
	return p.state
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.gpu
}

func (p *pipeline) Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor {
	st := p.state
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.key + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    st.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    st.TargetFormat,
				Blend:     st.Blend,
				WriteMask: st.WriteMask,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  st.Topology,
			FrontFace: st.FrontFace,
			CullMode:  st.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}

	if st.DepthFormat == wgpu.TextureFormatUndefined {
		return desc
	}
	compare := wgpu.CompareFunctionLess
	if !st.DepthTest {
		compare = wgpu.CompareFunctionAlways
	}
	desc.DepthStencil = &wgpu.DepthStencilState{
		Format:            st.DepthFormat,
		DepthWriteEnabled: st.DepthWrite,
		DepthCompare:      compare,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
	return desc
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	if p.gpu != nil && p.gpu != rp {
		p.gpu.Release()
	}
	p.gpu = rp
}

func (p *pipeline) Release() {
	if p.gpu != nil {
		p.gpu.Release()
		p.gpu = nil
	}
}
