package loader

import (
	_ "embed"
	"strings"
)

// BuiltinPrefix marks identifiers resolved against the embedded primitives instead of the filesystem.
const BuiltinPrefix = "builtin:"

const (
	// BuiltinCube is a unit cube centred on the origin with per-face normals.
	BuiltinCube = BuiltinPrefix + "cube"

	// BuiltinPlane is a unit plane in XZ facing +Y.
	BuiltinPlane = BuiltinPrefix + "plane"
)

//go:embed assets/cube.obj
var cubeOBJ string

//go:embed assets/plane.obj
var planeOBJ string

var builtins = map[string]string{
	BuiltinCube:  cubeOBJ,
	BuiltinPlane: planeOBJ,
}

// Builtins lists the identifiers of every embedded primitive.
//
// Returns:
//   - []string: the builtin identifiers
func Builtins() []string {
	return []string{BuiltinCube, BuiltinPlane}
}

func isBuiltin(identifier string) bool {
	return strings.HasPrefix(identifier, BuiltinPrefix)
}
