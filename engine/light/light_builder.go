package light

import (
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a functional option for configuring a GameLight during construction.
type LightBuilderOption func(*gameLight)

// WithTransform sets the light's initial placement.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - LightBuilderOption: functional option to set the transform
func WithTransform(t transform.Transform) LightBuilderOption {
	return func(l *gameLight) {
		l.transform = t
	}
}

// WithModel sets the marker model drawn at the light's position.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - LightBuilderOption: functional option to set the model
func WithModel(m model.Model) LightBuilderOption {
	return func(l *gameLight) {
		l.mdl = m
	}
}

// WithColor sets the light's RGB colour.
//
// Parameters:
//   - c: the colour
//
// Returns:
//   - LightBuilderOption: functional option to set the colour
func WithColor(c mgl32.Vec3) LightBuilderOption {
	return func(l *gameLight) {
		l.color = c
	}
}

// WithIntensity sets the light's scalar intensity.
//
// Parameters:
//   - i: the intensity
//
// Returns:
//   - LightBuilderOption: functional option to set the intensity
func WithIntensity(i float32) LightBuilderOption {
	return func(l *gameLight) {
		l.intensity = i
	}
}
