package shader

import (
	"embed"
	"fmt"
)

// Keys of the shaders embedded in the engine.
const (
	KeyObject    = "object"
	KeyLight     = "light"
	KeyTonemap   = "tonemap"
	KeyDebugAxis = "debug_axis"
)

//go:embed assets/*.wgsl
var builtinSources embed.FS

// Builtin loads and pre-processes one of the embedded engine shaders.
//
// Parameters:
//   - key: one of KeyObject, KeyLight, KeyTonemap or KeyDebugAxis
//
// Returns:
//   - Shader: the processed shader
//   - error: error if the key is unknown or processing fails
func Builtin(key string) (Shader, error) {
	data, err := builtinSources.ReadFile("assets/" + key + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader: unknown builtin %q: %w", key, err)
	}
	return NewShader(key, string(data))
}
