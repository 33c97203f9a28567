package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex buffer slots of the object and light pipelines.
const (
	slotVertex   = 0
	slotInstance = 1
)

// Bind group indices of the object pipeline.
const (
	objectGroupMaterial = 0
	objectGroupCamera   = 1
	objectGroupLights   = 2
)

// registerPipelines creates the shared bind group layouts and the four built-in pipelines.
// The camera layout declared by the object shader is reused as group 0 of the light and
// debug axis pipelines.
func (r *renderer) registerPipelines() error {
	shaders := make(map[string]shader.Shader, 4)
	for _, key := range []string{shader.KeyObject, shader.KeyLight, shader.KeyTonemap, shader.KeyDebugAxis} {
		s, err := shader.Builtin(key)
		if err != nil {
			return err
		}
		shaders[key] = s
	}

	object := shaders[shader.KeyObject]
	layoutSources := map[string]wgpu.BindGroupLayoutDescriptor{
		layoutMaterial: object.BindGroupLayoutDescriptor(objectGroupMaterial),
		layoutCamera:   object.BindGroupLayoutDescriptor(objectGroupCamera),
		layoutLights:   object.BindGroupLayoutDescriptor(objectGroupLights),
		layoutTonemap:  shaders[shader.KeyTonemap].BindGroupLayoutDescriptor(0),
	}
	for key, desc := range layoutSources {
		layout, err := r.backend.CreateBindGroupLayout(desc)
		if err != nil {
			return fmt.Errorf("renderer: %s bind group layout: %w", key, err)
		}
		r.layouts[key] = layout
		r.descriptors[key] = desc
	}

	meshLayouts := []wgpu.VertexBufferLayout{model.VertexBufferLayout(), scene.InstanceBufferLayout()}
	outFormat := r.out.format()

	specs := []struct {
		p       pipeline.Pipeline
		layouts []*wgpu.BindGroupLayout
	}{
		{
			p: pipeline.NewPipeline(shader.KeyObject, object,
				pipeline.WithVertexLayouts(meshLayouts...),
				pipeline.WithTargetFormat(HDRFormat),
				pipeline.WithDepthFormat(DepthFormat),
				pipeline.WithCullMode(wgpu.CullModeBack),
			),
			layouts: []*wgpu.BindGroupLayout{r.layouts[layoutMaterial], r.layouts[layoutCamera], r.layouts[layoutLights]},
		},
		{
			p: pipeline.NewPipeline(shader.KeyLight, shaders[shader.KeyLight],
				pipeline.WithVertexLayouts(meshLayouts...),
				pipeline.WithTargetFormat(HDRFormat),
				pipeline.WithDepthFormat(DepthFormat),
				pipeline.WithCullMode(wgpu.CullModeBack),
			),
			layouts: []*wgpu.BindGroupLayout{r.layouts[layoutCamera]},
		},
		{
			p: pipeline.NewPipeline(shader.KeyTonemap, shaders[shader.KeyTonemap],
				pipeline.WithTargetFormat(outFormat),
				pipeline.WithDepthFormat(wgpu.TextureFormatUndefined),
			),
			layouts: []*wgpu.BindGroupLayout{r.layouts[layoutTonemap]},
		},
		{
			p: pipeline.NewPipeline(shader.KeyDebugAxis, shaders[shader.KeyDebugAxis],
				pipeline.WithTargetFormat(outFormat),
				pipeline.WithDepthFormat(wgpu.TextureFormatUndefined),
				pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
			),
			layouts: []*wgpu.BindGroupLayout{r.layouts[layoutCamera]},
		},
	}

	for _, spec := range specs {
		if err := r.backend.RegisterRenderPipeline(spec.p, spec.layouts); err != nil {
			return fmt.Errorf("renderer: %w", err)
		}
		r.pipelineCache[spec.p.PipelineKey()] = spec.p
	}
	return nil
}

// encodeScenePass draws every object range, then every light range, into the HDR target.
func (r *renderer) encodeScenePass(encoder *wgpu.CommandEncoder, frame *scene.FrameData) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       r.tonemapGroup.TextureView(0),
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: r.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer pass.Release()

	camGroup := r.cam.BindGroupProvider().BindGroup()

	pass.SetVertexBuffer(slotInstance, r.instanceBuffer, 0, wgpu.WholeSize)

	pass.SetPipeline(r.pipelineCache[shader.KeyObject].RenderPipeline())
	pass.SetBindGroup(objectGroupCamera, camGroup, nil)
	pass.SetBindGroup(objectGroupLights, r.lightGroup.BindGroup(), nil)
	for _, rng := range frame.Objects {
		r.drawRange(pass, rng, true)
	}

	pass.SetPipeline(r.pipelineCache[shader.KeyLight].RenderPipeline())
	pass.SetBindGroup(0, camGroup, nil)
	for _, rng := range frame.Lights {
		r.drawRange(pass, rng, false)
	}

	pass.End()
}

// drawRange issues one instanced DrawIndexed per mesh of the range's model.
// withMaterial binds each mesh's material at group 0, falling back to the default material.
func (r *renderer) drawRange(pass *wgpu.RenderPassEncoder, rng scene.DrawRange, withMaterial bool) {
	if rng.Model == nil || rng.Len() == 0 {
		return
	}
	for _, mesh := range rng.Model.Meshes() {
		mp := mesh.Provider
		if mp == nil || mp.VertexBuffer() == nil || mp.IndexBuffer() == nil {
			continue
		}
		if withMaterial {
			pass.SetBindGroup(objectGroupMaterial, r.materialGroup(rng.Model, mesh), nil)
		}
		pass.SetVertexBuffer(slotVertex, mp.VertexBuffer(), 0, wgpu.WholeSize)
		pass.SetIndexBuffer(mp.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(mp.IndexCount(), rng.Len(), 0, 0, rng.Start)
	}
}

func (r *renderer) materialGroup(m model.Model, mesh model.Mesh) *wgpu.BindGroup {
	if mat := m.MaterialFor(mesh); mat != nil {
		if p := mat.BindGroupProvider(); p != nil && p.BindGroup() != nil {
			return p.BindGroup()
		}
	}
	return r.defaultMaterial.BindGroupProvider().BindGroup()
}

// encodeTonemapPass resolves the HDR target into the output view with a fullscreen triangle.
func (r *renderer) encodeTonemapPass(encoder *wgpu.CommandEncoder, target *wgpu.TextureView) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1.0},
			},
		},
	})
	defer pass.Release()

	pass.SetPipeline(r.pipelineCache[shader.KeyTonemap].RenderPipeline())
	pass.SetBindGroup(0, r.tonemapGroup.BindGroup(), nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
}

// encodeDebugAxisPass draws the world X, Y and Z axes over the output view.
func (r *renderer) encodeDebugAxisPass(encoder *wgpu.CommandEncoder, target *wgpu.TextureView) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    target,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	})
	defer pass.Release()

	pass.SetPipeline(r.pipelineCache[shader.KeyDebugAxis].RenderPipeline())
	pass.SetBindGroup(0, r.cam.BindGroupProvider().BindGroup(), nil)
	pass.Draw(6, 1, 0, 0)
	pass.End()
}
