package model

import (
	"math"

	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ImportedModel is the CPU-side result of parsing a model file, before GPU upload.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes contains every sub-mesh of the model.
	Meshes []ImportedMesh

	// Materials are the materials referenced by ImportedMesh.MaterialIndex.
	Materials []common.ImportedMaterial
}

// ImportedMesh represents a single indexed triangle mesh within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier (the OBJ o/g name).
	Name string

	// Vertices are de-duplicated vertices, one per unique position/uv/normal triple.
	Vertices []GPUVertex

	// Indices are the triangle list indices into Vertices.
	Indices []uint32

	// MaterialIndex references ImportedModel.Materials, or -1 for the default material.
	MaterialIndex int

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}

// ComputeTangents fills the Tangent and Bitangent of every vertex with the average of
// the per-triangle tangent frames of the triangles that reference it.
// Triangles with degenerate UVs contribute nothing.
func (m *ImportedMesh) ComputeTangents() {
	counts := make([]int, len(m.Vertices))
	tangents := make([]mgl32.Vec3, len(m.Vertices))
	bitangents := make([]mgl32.Vec3, len(m.Vertices))

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]

		p0 := mgl32.Vec3(v0.Position)
		dp1 := mgl32.Vec3(v1.Position).Sub(p0)
		dp2 := mgl32.Vec3(v2.Position).Sub(p0)

		uv0 := mgl32.Vec2(v0.TexCoord)
		duv1 := mgl32.Vec2(v1.TexCoord).Sub(uv0)
		duv2 := mgl32.Vec2(v2.TexCoord).Sub(uv0)

		det := duv1[0]*duv2[1] - duv1[1]*duv2[0]
		if det == 0 {
			continue
		}
		r := 1 / det
		tangent := dp1.Mul(duv2[1]).Sub(dp2.Mul(duv1[1])).Mul(r)
		bitangent := dp2.Mul(duv1[0]).Sub(dp1.Mul(duv2[0])).Mul(-r)

		for _, i := range [3]uint32{i0, i1, i2} {
			tangents[i] = tangents[i].Add(tangent)
			bitangents[i] = bitangents[i].Add(bitangent)
			counts[i]++
		}
	}

	for i := range m.Vertices {
		if counts[i] == 0 {
			continue
		}
		inv := 1 / float32(counts[i])
		m.Vertices[i].Tangent = tangents[i].Mul(inv)
		m.Vertices[i].Bitangent = bitangents[i].Mul(inv)
	}
}

// ComputeBounds sets BoundingMin and BoundingMax from the vertex positions.
func (m *ImportedMesh) ComputeBounds() {
	if len(m.Vertices) == 0 {
		m.BoundingMin, m.BoundingMax = [3]float32{}, [3]float32{}
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for k := range 3 {
			lo[k] = min(lo[k], v.Position[k])
			hi[k] = max(hi[k], v.Position[k])
		}
	}
	m.BoundingMin, m.BoundingMax = lo, hi
}

// BoundingRadius returns the largest vertex distance from the model origin across all meshes.
//
// Returns:
//   - float32: the bounding sphere radius
func (im *ImportedModel) BoundingRadius() float32 {
	var maxDistSq float32
	for _, mesh := range im.Meshes {
		for _, v := range mesh.Vertices {
			p := v.Position
			maxDistSq = max(maxDistSq, p[0]*p[0]+p[1]*p[1]+p[2]*p[2])
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
