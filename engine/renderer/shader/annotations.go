// annotations.go defines the annotation types and parser for the Vike WGSL shader
// pre-processor. Annotations are single-line WGSL comments prefixed with @vike: that
// inject shared struct definitions, substitute engine constants and declare bind group
// resources. Parsed group annotations double as the source of the shader's bind group
// layouts, so the Go side and the WGSL side describe each binding exactly once.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a Vike annotation within a WGSL comment line.
const annotationPrefix = "@vike:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition.
	//
	// Syntax: //@vike:include <struct_key>
	//
	// Example: //@vike:include camera
	annotationTypeInclude AnnotationType = "include"

	// annotationTypeConst emits a module-scope u32 constant with the engine's value.
	//
	// Syntax: //@vike:const <NAME>
	//
	// Example: //@vike:const MAX_LIGHTS
	annotationTypeConst AnnotationType = "const"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration and is
	// recorded in the declarations list used to build bind group layouts.
	//
	// Syntax:
	//   //@vike:group <group> <binding> uniform <var_name> <struct_key>
	//   //@vike:group <group> <binding> texture_2d <var_name>
	//   //@vike:group <group> <binding> sampler <var_name>
	//
	// Example: //@vike:group 1 0 uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// ResourceKind identifies the WGSL resource declared by a group annotation.
type ResourceKind string

const (
	// ResourceKindUniform is a uniform buffer of a registered struct type.
	ResourceKindUniform ResourceKind = "uniform"

	// ResourceKindTexture2D is a filterable 2D float texture.
	ResourceKindTexture2D ResourceKind = "texture_2d"

	// ResourceKindSampler is a filtering sampler.
	ResourceKindSampler ResourceKind = "sampler"
)

var validResourceKinds = []ResourceKind{ResourceKindUniform, ResourceKindTexture2D, ResourceKindSampler}

// Annotation represents a single parsed @vike: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = struct key
	//   - const:   [0] = constant name
	//   - group:   [0] = resource kind, [1] = var name, [2] = struct key (uniform only)
	Args []string

	// Line is the 1-based source line the annotation was found on.
	Line int

	// Group is the bind group index for group annotations, nil otherwise.
	Group *int

	// Binding is the binding index for group annotations, nil otherwise.
	Binding *int
}

// Kind returns the resource kind of a group annotation.
//
// Returns:
//   - ResourceKind: the declared resource kind, or "" for other annotation types
func (a Annotation) Kind() ResourceKind {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) == 0 {
		return ""
	}
	return ResourceKind(a.Args[0])
}

// VarName returns the WGSL variable name of a group annotation.
//
// Returns:
//   - string: the variable name, or "" for other annotation types
func (a Annotation) VarName() string {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 2 {
		return ""
	}
	return a.Args[1]
}

// parseAnnotation parses a single WGSL source line. Lines without the annotation prefix
// return nil without error.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number for error messages
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @vike annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @vike include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: annotationTypeInclude, Args: args[1:], Line: lineNum}, nil
	case annotationTypeConst:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @vike const annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: annotationTypeConst, Args: args[1:], Line: lineNum}, nil
	case AnnotationTypeBindingGroup:
		if len(args) < 5 {
			return nil, fmt.Errorf("line %d: @vike group annotation requires group, binding, kind and var name", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @vike group annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @vike group annotation", lineNum, args[2])
		}
		kind := ResourceKind(args[3])
		if !slices.Contains(validResourceKinds, kind) {
			return nil, fmt.Errorf("line %d: unknown resource kind %q in @vike group annotation", lineNum, args[3])
		}
		want := 5
		if kind == ResourceKindUniform {
			want = 6
		}
		if len(args) != want {
			return nil, fmt.Errorf("line %d: @vike group %s annotation requires %d arguments, got %d", lineNum, kind, want-1, len(args)-1)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    args[3:],
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}
