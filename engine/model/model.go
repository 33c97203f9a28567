package model

import (
	"github.com/Carmen-Shannon/vike-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/material"
)

// Mesh is one GPU-resident indexed mesh of a Model.
type Mesh struct {
	// Name is the mesh identifier.
	Name string

	// Provider holds the vertex buffer, index buffer and index count.
	Provider bind_group_provider.BindGroupProvider

	// MaterialIndex selects the material from Model.Materials.
	MaterialIndex int
}

// model is the implementation of the Model interface.
type model struct {
	name           string
	meshes         []Mesh
	materials      []material.Material
	boundingRadius float32
}

// Model defines the interface for a loaded, GPU-ready 3D model.
// A Model is immutable after loading and is shared by every object and light that
// references it, so its identity is its Name. It owns the GPU resources of its meshes
// and materials for its whole lifetime.
type Model interface {
	// Name retrieves the model identifier used as the draw grouping key.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the GPU meshes of this model in draw order.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// Materials retrieves the render materials referenced by the meshes.
	//
	// Returns:
	//   - []material.Material: the materials
	Materials() []material.Material

	// MaterialFor returns the material referenced by mesh, falling back to the first
	// material when the index is out of range. Returns nil for a model without materials.
	//
	// Parameters:
	//   - mesh: the mesh whose material is requested
	//
	// Returns:
	//   - material.Material: the material or nil
	MaterialFor(mesh Mesh) material.Material

	// BoundingRadius returns the maximum vertex distance from the model origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// Release frees the GPU resources of every mesh and material.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) Materials() []material.Material {
	return m.materials
}

func (m *model) MaterialFor(mesh Mesh) material.Material {
	if len(m.materials) == 0 {
		return nil
	}
	if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(m.materials) {
		return m.materials[0]
	}
	return m.materials[mesh.MaterialIndex]
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) Release() {
	for _, mesh := range m.meshes {
		if mesh.Provider != nil {
			mesh.Provider.Release()
		}
	}
	for _, mat := range m.materials {
		if p := mat.BindGroupProvider(); p != nil {
			p.Release()
		}
	}
}
