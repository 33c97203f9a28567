package loader

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/vike-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/material"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUploader struct {
	mu          sync.Mutex
	meshes      []string
	vertexBytes []int
	indexCounts []uint32
	materials   []string
	failMeshes  error
}

func (f *fakeUploader) CreateMeshBuffers(label string, vertexData, indexData []byte, indexCount uint32) (bind_group_provider.BindGroupProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMeshes != nil {
		return nil, f.failMeshes
	}
	f.meshes = append(f.meshes, label)
	f.vertexBytes = append(f.vertexBytes, len(vertexData))
	f.indexCounts = append(f.indexCounts, indexCount)
	return bind_group_provider.NewBindGroupProvider(label), nil
}

func (f *fakeUploader) CreateMaterial(mat material.Material) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.materials = append(f.materials, mat.Name())
	return nil
}

func parseOBJ(t *testing.T, src string) (*objDecoder, error) {
	t.Helper()
	dec := &objDecoder{file: "test.obj"}
	return dec, dec.parse(strings.NewReader(src), dec.parseObjLine)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func TestBuiltinCube(t *testing.T) {
	imported, err := NewLoader().Import(BuiltinCube)
	require.NoError(t, err)

	require.Len(t, imported.Meshes, 1)
	mesh := imported.Meshes[0]
	assert.Equal(t, "cube", mesh.Name)
	assert.Len(t, mesh.Vertices, 24)
	assert.Len(t, mesh.Indices, 36)
	assert.Equal(t, [3]float32{-0.5, -0.5, -0.5}, mesh.BoundingMin)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, mesh.BoundingMax)
	assert.InDelta(t, math.Sqrt(0.75), imported.BoundingRadius(), 1e-6)

	require.Len(t, imported.Materials, 1)
	assert.Equal(t, "default", imported.Materials[0].Name)
	assert.Equal(t, 0, mesh.MaterialIndex)
}

func TestBuiltinPlane(t *testing.T) {
	imported, err := NewLoader().Import(BuiltinPlane)
	require.NoError(t, err)

	require.Len(t, imported.Meshes, 1)
	mesh := imported.Meshes[0]
	assert.Len(t, mesh.Vertices, 4)
	assert.Len(t, mesh.Indices, 6)
	for _, v := range mesh.Vertices {
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
		assert.Equal(t, float32(0), v.Position[1])
	}
}

func TestBuiltinsListed(t *testing.T) {
	l := NewLoader()
	for _, id := range Builtins() {
		_, err := l.Import(id)
		assert.NoError(t, err, id)
	}
}

func TestUnknownBuiltin(t *testing.T) {
	_, err := NewLoader().Import("builtin:teapot")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFlipsTextureV(t *testing.T) {
	imported, err := NewLoader().Import(BuiltinPlane)
	require.NoError(t, err)

	// vt 0 0 becomes the bottom-left corner in texture space.
	assert.Equal(t, [2]float32{0, 1}, imported.Meshes[0].Vertices[0].TexCoord)
}

func TestFanTriangulation(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0.5 1.5 0
v 0 1 0
f 1 2 3 4 5
`
	dec, err := parseOBJ(t, src)
	require.NoError(t, err)
	m := dec.build("pentagon", nil, zap.NewNop())

	require.Len(t, m.Meshes, 1)
	assert.Len(t, m.Meshes[0].Vertices, 5)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}, m.Meshes[0].Indices)
}

func TestNegativeIndices(t *testing.T) {
	dec, err := parseOBJ(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n")
	require.NoError(t, err)

	require.Len(t, dec.groups, 1)
	assert.Equal(t, []objCorner{{0, -1, -1}, {1, -1, -1}, {2, -1, -1}}, dec.groups[0].corners)
}

func TestMissingNormalsUseFaceNormal(t *testing.T) {
	dec, err := parseOBJ(t, triangleOBJ)
	require.NoError(t, err)
	m := dec.build("tri", nil, zap.NewNop())

	for _, v := range m.Meshes[0].Vertices {
		assert.InDelta(t, 0, v.Normal[0], 1e-6)
		assert.InDelta(t, 0, v.Normal[1], 1e-6)
		assert.InDelta(t, 1, v.Normal[2], 1e-6)
	}
}

func TestSharedCornersDeduplicated(t *testing.T) {
	dec, err := parseOBJ(t, "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3\nf 1 3 4\n")
	require.NoError(t, err)
	m := dec.build("quad", nil, zap.NewNop())

	assert.Len(t, m.Meshes[0].Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Meshes[0].Indices)
}

func TestMalformedOBJ(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line string
	}{
		{name: "zero index", src: "v 0 0 0\nv 1 0 0\nf 1 2 0\n", line: "line 3"},
		{name: "out of range", src: "v 0 0 0\n\n# comment\nf 1 2 9\n", line: "line 4"},
		{name: "bad float", src: "v 1 x 0\n", line: "line 1"},
		{name: "short vertex", src: "v 1 2\n", line: "line 1"},
		{name: "two corners", src: triangleOBJ + "f 1 2\n", line: "line 5"},
		{name: "bad normal index", src: "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n", line: "line 4"},
		{name: "non integer", src: "v 0 0 0\nf a b c\n", line: "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOBJ(t, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedModel)
			assert.Contains(t, err.Error(), "test.obj "+tt.line)
		})
	}
}

func TestUnknownStatementsIgnored(t *testing.T) {
	_, err := parseOBJ(t, "s 1\nvp 0.5\nl 1 2\n"+triangleOBJ)
	assert.NoError(t, err)
}

func TestMaterialLibrary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scene.mtl", `newmtl red
Kd 1 0 0
d 0.5
Ns 64
map_Kd -s 1 1 tex/red.png

newmtl blue
Kd 0 0 1
Tr 0.25
`)
	path := writeFile(t, dir, "scene.obj", `mtllib scene.mtl
o box
v 0 0 0
v 1 0 0
v 0 1 0
usemtl red
f 1 2 3
usemtl blue
f 1 3 2
usemtl red
f 2 3 1
`)

	imported, err := newOBJLoaderBackend(zap.NewNop()).Load(path)
	require.NoError(t, err)

	require.Len(t, imported.Meshes, 3)
	assert.Equal(t, "box_0", imported.Meshes[0].Name)
	assert.Equal(t, []int{0, 1, 0}, []int{
		imported.Meshes[0].MaterialIndex,
		imported.Meshes[1].MaterialIndex,
		imported.Meshes[2].MaterialIndex,
	})

	require.Len(t, imported.Materials, 2)
	red, blue := imported.Materials[0], imported.Materials[1]
	assert.Equal(t, "red", red.Name)
	assert.Equal(t, [4]float32{1, 0, 0, 0.5}, red.DiffuseColor)
	assert.Equal(t, float32(64), red.Shininess)
	require.NotNil(t, red.DiffuseTexture)
	assert.Equal(t, filepath.Join(dir, "tex", "red.png"), red.DiffuseTexture.Path)
	assert.Equal(t, [4]float32{0, 0, 1, 0.75}, blue.DiffuseColor)
	assert.Nil(t, blue.DiffuseTexture)
}

func TestMissingMaterialLibraryFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lonely.obj", "mtllib missing.mtl\nusemtl red\n"+triangleOBJ)

	imported, err := newOBJLoaderBackend(zap.NewNop()).Load(path)
	require.NoError(t, err)

	require.Len(t, imported.Materials, 1)
	assert.Equal(t, "red", imported.Materials[0].Name)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, imported.Materials[0].DiffuseColor)
}

func TestMalformedMaterialLibrary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.mtl", "newmtl red\nKd 1 x 0\n")
	path := writeFile(t, dir, "bad.obj", "mtllib bad.mtl\n"+triangleOBJ)

	_, err := newOBJLoaderBackend(zap.NewNop()).Load(path)
	assert.ErrorIs(t, err, ErrMalformedModel)
	assert.Contains(t, err.Error(), "bad.mtl line 2")
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := NewLoader().Load("ship.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(WithAssetDir(t.TempDir())).Load("nope.obj")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadResolvesAssetDirAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "models/tri.obj", triangleOBJ)
	l := NewLoader(WithAssetDir(dir))

	first, err := l.Load("models/tri.obj")
	require.NoError(t, err)
	second, err := l.Load("models/tri.obj")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "models/tri.obj", first.Name())
	assert.Same(t, first, l.Get("models/tri.obj"))
	assert.Len(t, l.Models(), 1)
}

func TestLoadUploadsMeshesAndMaterials(t *testing.T) {
	up := &fakeUploader{}
	l := NewLoader(WithUploader(up))

	m, err := l.Load(BuiltinCube)
	require.NoError(t, err)

	assert.Equal(t, []string{"builtin:cube/cube"}, up.meshes)
	assert.Equal(t, []int{24 * 56}, up.vertexBytes)
	assert.Equal(t, []uint32{36}, up.indexCounts)
	assert.Equal(t, []string{"default"}, up.materials)

	require.Len(t, m.Meshes(), 1)
	assert.NotNil(t, m.Meshes()[0].Provider)
	assert.NotNil(t, m.MaterialFor(m.Meshes()[0]))
	assert.InDelta(t, math.Sqrt(0.75), m.BoundingRadius(), 1e-6)
}

func TestUploadFailureNotCached(t *testing.T) {
	boom := errors.New("device lost")
	up := &fakeUploader{failMeshes: boom}
	l := NewLoader(WithUploader(up))

	_, err := l.Load(BuiltinPlane)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, l.Get(BuiltinPlane))

	up.failMeshes = nil
	_, err = l.Load(BuiltinPlane)
	assert.NoError(t, err)
}

func TestLoadReader(t *testing.T) {
	l := NewLoader()
	m, err := l.LoadReader("inline", strings.NewReader(triangleOBJ))
	require.NoError(t, err)
	assert.Equal(t, "inline", m.Name())
	assert.Equal(t, []string{"inline"}, l.Identifiers())
}

func TestWithModelPrepopulates(t *testing.T) {
	cube, err := NewLoader().Load(BuiltinCube)
	require.NoError(t, err)

	l := NewLoader(WithModel("hero", cube))
	got, err := l.Load("hero")
	require.NoError(t, err)
	assert.Same(t, cube, got)
}

func TestReleaseEmptiesCache(t *testing.T) {
	l := NewLoader(WithUploader(&fakeUploader{}))
	_, err := l.Load(BuiltinCube)
	require.NoError(t, err)

	l.Release()
	assert.Empty(t, l.Identifiers())
}

func TestLoaderServesStore(t *testing.T) {
	l := NewLoader()
	s := scene.NewGameObjectStore(scene.WithModelLoader(l))

	m, err := s.LoadModel(BuiltinPlane)
	require.NoError(t, err)
	assert.Same(t, l.Get(BuiltinPlane), m)
}
