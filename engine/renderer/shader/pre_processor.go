// pre_processor.go implements the Vike WGSL shader pre-processor. It scans shader
// source code for @vike: annotations, replaces them with injected struct sources,
// constant declarations or generated bind group variables, and collects the group
// declarations that the Shader turns into bind group layout descriptors.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/vike-go/engine/camera"
	"github.com/Carmen-Shannon/vike-go/engine/light"
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/material"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the WGSL type name used in generated uniform declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by @vike:include.
	Source string

	// Type is the WGSL type name emitted in @vike:group uniform declarations.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps struct keys to their embedded WGSL source and type name.
	structRegistry map[string]registryEntry

	// constRegistry maps constant names to the values emitted by @vike:const.
	constRegistry map[string]uint32

	// declarations accumulates group annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @vike: annotations.
type PreProcessor interface {
	// Process replaces every @vike: annotation in source with its WGSL output.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if any annotation is malformed or references an unknown key
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent
	// Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with the engine's GPU struct types and
// constants registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[string]registryEntry{
			"camera":          {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			"light":           {Source: light.GPULightSource, Type: "LightUniform"},
			"vertex":          {Source: model.GPUVertexSource, Type: "VertexInput"},
			"instance":        {Source: scene.InstanceRawSource, Type: "InstanceInput"},
			"material_params": {Source: material.GPUMaterialParamsSource, Type: "MaterialParams"},
		},
		constRegistry: map[string]uint32{
			"MAX_LIGHTS": light.MaxLights,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @vike:include argument %q", a.Line, a.Args[0])
			}
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case annotationTypeConst:
			v, ok := p.constRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @vike:const name %q", a.Line, a.Args[0])
			}
			out = append(out, fmt.Sprintf("const %s: u32 = %du;", a.Args[0], v))
		case AnnotationTypeBindingGroup:
			decl, err := p.declare(*a)
			if err != nil {
				return "", err
			}
			out = append(out, decl)
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// declare renders the WGSL variable declaration of a group annotation.
func (p *preProcessor) declare(a Annotation) (string, error) {
	prefix := fmt.Sprintf("@group(%d) @binding(%d)", *a.Group, *a.Binding)
	switch a.Kind() {
	case ResourceKindUniform:
		entry, ok := p.structRegistry[a.Args[2]]
		if !ok {
			return "", fmt.Errorf("line %d: unknown struct key %q in @vike:group", a.Line, a.Args[2])
		}
		return fmt.Sprintf("%s var<uniform> %s: %s;", prefix, a.VarName(), entry.Type), nil
	case ResourceKindTexture2D:
		return fmt.Sprintf("%s var %s: texture_2d<f32>;", prefix, a.VarName()), nil
	default:
		return fmt.Sprintf("%s var %s: sampler;", prefix, a.VarName()), nil
	}
}
