package shader

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// VertexEntryPoint is the vertex stage entry point every engine shader defines.
	VertexEntryPoint = "vs_main"

	// FragmentEntryPoint is the fragment stage entry point every engine shader defines.
	FragmentEntryPoint = "fs_main"
)

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and material binding.
type shader struct {
	key                        string
	source                     string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	declarations               []Annotation
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for a pre-processed WGSL module holding both a vertex and
// a fragment entry point. It exposes the bind group layout descriptors declared by the
// module's @vike:group annotations for pipeline layout creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the layout descriptor of a bind group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all declared bind group layout descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// GroupCount returns one past the highest declared group index.
	//
	// Returns:
	//   - int: the number of bind group slots the pipeline layout needs
	GroupCount() int

	// BindGroupVarName retrieves the variable name for a given group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the group and binding of a declared variable.
	//
	// Parameters:
	//   - varName: the variable name
	//
	// Returns:
	//   - int: the group index, or -1 if not found
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(varName string) (int, int, bool)

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the group annotations parsed from the shader source.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes WGSL source and derives its bind group layouts.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - source: the raw WGSL source containing @vike: annotations
//
// Returns:
//   - Shader: the processed shader
//   - error: error if pre-processing fails or a binding is declared twice
func NewShader(key, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader: pre-process %s: %w", key, err)
	}
	if !strings.Contains(processed, "fn "+VertexEntryPoint) {
		return nil, fmt.Errorf("shader: %s has no %s entry point", key, VertexEntryPoint)
	}

	s := &shader{
		key:          key,
		source:       processed,
		declarations: slices.Clone(pp.Declarations()),
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: processed,
			},
		},
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames, err = buildBindGroupLayouts(key, s.declarations)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewShaderFromPath reads WGSL source from disk and passes it to NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the processed shader
//   - error: error if the file cannot be read or processed
func NewShaderFromPath(key, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read source file %q: %w", path, err)
	}
	return NewShader(key, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) GroupCount() int {
	n := 0
	for g := range s.bindGroupLayoutDescriptors {
		n = max(n, g+1)
	}
	return n
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(varName string) (int, int, bool) {
	for _, a := range s.declarations {
		if a.VarName() == varName {
			return *a.Group, *a.Binding, true
		}
	}
	return -1, -1, false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

// buildBindGroupLayouts groups the declarations by bind group and converts each into a
// layout entry visible to both the vertex and the fragment stage.
func buildBindGroupLayouts(key string, decls []Annotation) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)

	for _, a := range decls {
		g, b := *a.Group, *a.Binding
		if varNames[g] == nil {
			varNames[g] = make(map[int]string)
		}
		if prev, dup := varNames[g][b]; dup {
			return nil, nil, fmt.Errorf("shader: %s line %d: group %d binding %d already declared by %q", key, a.Line, g, b, prev)
		}
		varNames[g][b] = a.VarName()
		entries[g] = append(entries[g], classifyResource(uint32(b), wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, a.Kind()))
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, es := range entries {
		slices.SortFunc(es, func(x, y wgpu.BindGroupLayoutEntry) int {
			return int(x.Binding) - int(y.Binding)
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s_group_%d", key, g),
			Entries: es,
		}
	}
	return result, varNames, nil
}

// classifyResource creates a wgpu.BindGroupLayoutEntry for a declared resource kind.
func classifyResource(binding uint32, visibility wgpu.ShaderStage, kind ResourceKind) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}
	switch kind {
	case ResourceKindUniform:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case ResourceKindTexture2D:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case ResourceKindSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	}
	return entry
}
