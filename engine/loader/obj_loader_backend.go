package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrMalformedModel is returned for model files whose geometry or material statements
// cannot be parsed. The wrapping error names the file and line.
var ErrMalformedModel = errors.New("loader: malformed model")

const defaultGroupName = "default"

// objLoaderBackendImpl is the implementation of objLoaderBackend.
type objLoaderBackendImpl struct {
	logger *zap.Logger
}

// objLoaderBackend is a loaderBackend implementation for Wavefront OBJ files and
// their MTL material libraries.
type objLoaderBackend interface {
	loaderBackend
}

var _ objLoaderBackend = &objLoaderBackendImpl{}

// newOBJLoaderBackend creates a new OBJ loader backend.
//
// Parameters:
//   - logger: logger receiving material library warnings
//
// Returns:
//   - objLoaderBackend: the loader backend for .obj files
func newOBJLoaderBackend(logger *zap.Logger) objLoaderBackend {
	return &objLoaderBackendImpl{logger: logger}
}

func (b *objLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return b.decode(path, filepath.Base(path), f, filepath.Dir(path))
}

func (b *objLoaderBackendImpl) LoadReader(name string, r io.Reader, dir string) (*model.ImportedModel, error) {
	return b.decode(name, name, r, dir)
}

func (b *objLoaderBackendImpl) decode(name, file string, r io.Reader, dir string) (*model.ImportedModel, error) {
	dec := &objDecoder{file: file}
	if err := dec.parse(r, dec.parseObjLine); err != nil {
		return nil, err
	}

	library := make(map[string]common.ImportedMaterial)
	for _, lib := range dec.matlibs {
		if dir == "" {
			b.logger.Warn("material library ignored for stream without directory",
				zap.String("model", name), zap.String("mtllib", lib))
			continue
		}
		path := lib
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, lib)
		}
		mats, err := b.loadMaterialLibrary(path)
		if errors.Is(err, os.ErrNotExist) {
			b.logger.Warn("material library not found, using default material",
				zap.String("model", name), zap.String("mtllib", path))
			continue
		}
		if err != nil {
			return nil, err
		}
		for k, v := range mats {
			library[k] = v
		}
	}

	return dec.build(name, library, b.logger), nil
}

func (b *objLoaderBackendImpl) loadMaterialLibrary(path string) (map[string]common.ImportedMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := &mtlDecoder{file: filepath.Base(path), dir: filepath.Dir(path), materials: make(map[string]*common.ImportedMaterial)}
	if err := parseLines(f, &dec.line, dec.parseMtlLine); err != nil {
		return nil, err
	}
	out := make(map[string]common.ImportedMaterial, len(dec.materials))
	for k, v := range dec.materials {
		out[k] = *v
	}
	return out, nil
}

// parseLines feeds every trimmed, non-empty, non-comment line to parseLine, keeping line
// current for error messages.
func parseLines(reader io.Reader, line *int, parseLine func(fields []string) error) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	*line = 0
	for scanner.Scan() {
		*line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := parseLine(fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// objCorner is one face corner. Texture and normal indices are -1 when absent.
type objCorner struct {
	v, vt, vn int
}

// objGroup collects the triangulated corners sharing an object name and material.
type objGroup struct {
	object   string
	material string
	corners  []objCorner
}

// objDecoder holds the state of one OBJ parse.
type objDecoder struct {
	file      string
	line      int
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3
	matlibs   []string
	groups    []*objGroup
	current   *objGroup
	object    string
	material  string
}

func (d *objDecoder) parse(reader io.Reader, parseLine func([]string) error) error {
	return parseLines(reader, &d.line, parseLine)
}

func (d *objDecoder) parseObjLine(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := d.parseFloats(fields[1:], 3, "v")
		if err != nil {
			return err
		}
		d.positions = append(d.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := d.parseFloats(fields[1:], 2, "vt")
		if err != nil {
			return err
		}
		d.uvs = append(d.uvs, mgl32.Vec2{v[0], v[1]})
	case "vn":
		v, err := d.parseFloats(fields[1:], 3, "vn")
		if err != nil {
			return err
		}
		d.normals = append(d.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "f":
		return d.parseFace(fields[1:])
	case "o", "g":
		if len(fields) < 2 {
			return d.formatError("'%s' with no name", fields[0])
		}
		d.object = strings.Join(fields[1:], " ")
		d.current = nil
	case "usemtl":
		if len(fields) < 2 {
			return d.formatError("'usemtl' with no name")
		}
		d.material = fields[1]
		d.current = nil
	case "mtllib":
		if len(fields) < 2 {
			return d.formatError("'mtllib' with no file")
		}
		d.matlibs = append(d.matlibs, fields[1:]...)
	}
	// s, l, p, vp and other statements carry nothing a triangle mesh needs.
	return nil
}

func (d *objDecoder) parseFloats(fields []string, n int, kind string) ([]float32, error) {
	if len(fields) < n {
		return nil, d.formatError("'%s' needs %d values, got %d", kind, n, len(fields))
	}
	out := make([]float32, n)
	for i := range n {
		val, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, d.formatError("'%s' value %q is not a number", kind, fields[i])
		}
		out[i] = float32(val)
	}
	return out, nil
}

// parseFace parses f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ... and appends the
// polygon as a triangle fan around its first corner.
func (d *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return d.formatError("face with %d corners, need at least 3", len(fields))
	}
	corners := make([]objCorner, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		var err error
		c := objCorner{vt: -1, vn: -1}
		if c.v, err = d.resolveIndex(parts[0], len(d.positions), "vertex"); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.vt, err = d.resolveIndex(parts[1], len(d.uvs), "texture"); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.vn, err = d.resolveIndex(parts[2], len(d.normals), "normal"); err != nil {
				return err
			}
		}
		corners[i] = c
	}

	if d.current == nil {
		d.current = &objGroup{object: common.Coalesce(d.object, defaultGroupName), material: d.material}
		d.groups = append(d.groups, d.current)
	}
	for i := 1; i+1 < len(corners); i++ {
		d.current.corners = append(d.current.corners, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// resolveIndex converts a 1-based or negative relative OBJ index into a 0-based index.
func (d *objDecoder) resolveIndex(s string, count int, kind string) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, d.formatError("%s index %q is not an integer", kind, s)
	}
	idx := val - 1
	if val < 0 {
		idx = count + val
	}
	if val == 0 || idx < 0 || idx >= count {
		return 0, d.formatError("%s index %d out of range (have %d)", kind, val, count)
	}
	return idx, nil
}

func (d *objDecoder) formatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrMalformedModel, d.file, d.line, fmt.Sprintf(format, args...))
}

// build converts the parsed groups into de-duplicated indexed meshes. Materials are
// assigned in order of first use; names missing from library get the default material.
func (d *objDecoder) build(name string, library map[string]common.ImportedMaterial, logger *zap.Logger) *model.ImportedModel {
	out := &model.ImportedModel{Name: name}
	materialIndex := make(map[string]int)

	for i, g := range d.groups {
		if len(g.corners) == 0 {
			continue
		}
		matIdx, ok := materialIndex[g.material]
		if !ok {
			mat, found := library[g.material]
			if !found {
				if g.material != "" {
					logger.Warn("material not found, using default material",
						zap.String("model", name), zap.String("material", g.material))
				}
				mat = common.DefaultMaterial()
				mat.Name = common.Coalesce(g.material, mat.Name)
			}
			matIdx = len(out.Materials)
			out.Materials = append(out.Materials, mat)
			materialIndex[g.material] = matIdx
		}

		meshName := g.object
		if len(d.groups) > 1 {
			meshName = fmt.Sprintf("%s_%d", g.object, i)
		}
		mesh := d.buildMesh(meshName, g)
		mesh.MaterialIndex = matIdx
		out.Meshes = append(out.Meshes, mesh)
	}
	return out
}

func (d *objDecoder) buildMesh(name string, g *objGroup) model.ImportedMesh {
	mesh := model.ImportedMesh{Name: name}
	lookup := make(map[objCorner]uint32)
	var needNormals []bool

	for _, c := range g.corners {
		idx, ok := lookup[c]
		if !ok {
			idx = uint32(len(mesh.Vertices))
			var v model.GPUVertex
			v.Position = d.positions[c.v]
			if c.vt >= 0 {
				uv := d.uvs[c.vt]
				v.TexCoord = [2]float32{uv[0], 1 - uv[1]}
			}
			if c.vn >= 0 {
				v.Normal = d.normals[c.vn]
			}
			mesh.Vertices = append(mesh.Vertices, v)
			needNormals = append(needNormals, c.vn < 0)
			lookup[c] = idx
		}
		mesh.Indices = append(mesh.Indices, idx)
	}

	fillFaceNormals(&mesh, needNormals)
	mesh.ComputeTangents()
	mesh.ComputeBounds()
	return mesh
}

// fillFaceNormals gives every flagged vertex the normalised sum of its triangles' normals.
func fillFaceNormals(mesh *model.ImportedMesh, flagged []bool) {
	sums := make([]mgl32.Vec3, len(mesh.Vertices))
	touched := false
	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		i0, i1, i2 := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
		if !flagged[i0] && !flagged[i1] && !flagged[i2] {
			continue
		}
		touched = true
		p0 := mgl32.Vec3(mesh.Vertices[i0].Position)
		n := mgl32.Vec3(mesh.Vertices[i1].Position).Sub(p0).Cross(mgl32.Vec3(mesh.Vertices[i2].Position).Sub(p0))
		for _, i := range [3]uint32{i0, i1, i2} {
			sums[i] = sums[i].Add(n)
		}
	}
	if !touched {
		return
	}
	for i, f := range flagged {
		if f && sums[i].Len() > 0 {
			mesh.Vertices[i].Normal = sums[i].Normalize()
		}
	}
}

// mtlDecoder holds the state of one MTL parse.
type mtlDecoder struct {
	file      string
	dir       string
	line      int
	materials map[string]*common.ImportedMaterial
	current   *common.ImportedMaterial
}

func (d *mtlDecoder) parseMtlLine(fields []string) error {
	if fields[0] == "newmtl" {
		if len(fields) < 2 {
			return d.formatError("'newmtl' with no name")
		}
		mat := common.DefaultMaterial()
		mat.Name = fields[1]
		d.materials[mat.Name] = &mat
		d.current = &mat
		return nil
	}
	if d.current == nil {
		return d.formatError("'%s' before any 'newmtl'", fields[0])
	}

	switch fields[0] {
	case "Kd":
		c, err := d.parseColor(fields)
		if err != nil {
			return err
		}
		d.current.DiffuseColor = [4]float32{c[0], c[1], c[2], d.current.DiffuseColor[3]}
	case "Ka":
		c, err := d.parseColor(fields)
		if err != nil {
			return err
		}
		d.current.AmbientColor = c
	case "Ks":
		c, err := d.parseColor(fields)
		if err != nil {
			return err
		}
		d.current.SpecularColor = c
	case "Ns":
		v, err := d.parseScalar(fields)
		if err != nil {
			return err
		}
		d.current.Shininess = v
	case "d":
		v, err := d.parseScalar(fields)
		if err != nil {
			return err
		}
		d.current.DiffuseColor[3] = v
	case "Tr":
		v, err := d.parseScalar(fields)
		if err != nil {
			return err
		}
		d.current.DiffuseColor[3] = 1 - v
	case "map_Kd":
		d.current.DiffuseTexture = d.texture("diffuse", fields[1:])
	case "map_Bump", "map_bump", "bump", "norm":
		d.current.NormalTexture = d.texture("normal", fields[1:])
	}
	return nil
}

func (d *mtlDecoder) parseColor(fields []string) ([3]float32, error) {
	var c [3]float32
	if len(fields) < 4 {
		return c, d.formatError("'%s' needs 3 values, got %d", fields[0], len(fields)-1)
	}
	for i := range 3 {
		val, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return c, d.formatError("'%s' value %q is not a number", fields[0], fields[i+1])
		}
		c[i] = float32(val)
	}
	return c, nil
}

func (d *mtlDecoder) parseScalar(fields []string) (float32, error) {
	if len(fields) < 2 {
		return 0, d.formatError("'%s' with no value", fields[0])
	}
	val, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return 0, d.formatError("'%s' value %q is not a number", fields[0], fields[1])
	}
	return float32(val), nil
}

// texture takes the last field as the file name, skipping -o/-s style options.
func (d *mtlDecoder) texture(name string, fields []string) *common.ImportedTexture {
	if len(fields) == 0 {
		return nil
	}
	path := fields[len(fields)-1]
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.dir, path)
	}
	return &common.ImportedTexture{Name: name, Path: path}
}

func (d *mtlDecoder) formatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrMalformedModel, d.file, d.line, fmt.Sprintf(format, args...))
}
