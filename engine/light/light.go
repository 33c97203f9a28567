package light

import (
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// gameLight is the implementation of the GameLight interface.
type gameLight struct {
	name      string
	transform transform.Transform
	mdl       model.Model
	color     mgl32.Vec3
	intensity float32
}

// GameLight is a named point light placed in the scene. Its optional model is drawn
// with the light pipeline as a visible marker tinted by Color; its position, colour
// and intensity feed the light uniform whether or not a model is set.
type GameLight interface {
	// Name returns the light's key in the store.
	//
	// Returns:
	//   - string: the light name
	Name() string

	// Transform returns the light's placement for in-place mutation between frames.
	//
	// Returns:
	//   - *transform.Transform: pointer to the owned transform
	Transform() *transform.Transform

	// SetTransform replaces the light's placement.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t transform.Transform)

	// Model returns the marker model, or nil.
	//
	// Returns:
	//   - model.Model: the model or nil
	Model() model.Model

	// SetModel sets or clears the marker model.
	//
	// Parameters:
	//   - m: the model, or nil to draw nothing
	SetModel(m model.Model)

	// Color returns the light's RGB colour.
	//
	// Returns:
	//   - mgl32.Vec3: the colour
	Color() mgl32.Vec3

	// SetColor sets the light's RGB colour.
	//
	// Parameters:
	//   - c: the colour
	SetColor(c mgl32.Vec3)

	// Intensity returns the light's scalar intensity.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// SetIntensity sets the light's scalar intensity.
	//
	// Parameters:
	//   - i: the intensity
	SetIntensity(i float32)

	// ToGPU converts one placement of this light to its uniform entry.
	// The placement may differ from Transform when the light is multiplied by an array.
	//
	// Parameters:
	//   - t: the instance transform
	//
	// Returns:
	//   - GPULight: the GPU-aligned light
	ToGPU(t transform.Transform) GPULight
}

var _ GameLight = &gameLight{}

// NewLight creates a white light of intensity 1 at the origin with the given options applied.
//
// Parameters:
//   - name: the light's key
//   - options: functional options configuring the light
//
// Returns:
//   - GameLight: the new light
func NewLight(name string, options ...LightBuilderOption) GameLight {
	l := &gameLight{
		name:      name,
		transform: transform.Identity(),
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *gameLight) Name() string {
	return l.name
}

func (l *gameLight) Transform() *transform.Transform {
	return &l.transform
}

func (l *gameLight) SetTransform(t transform.Transform) {
	l.transform = t
}

func (l *gameLight) Model() model.Model {
	return l.mdl
}

func (l *gameLight) SetModel(m model.Model) {
	l.mdl = m
}

func (l *gameLight) Color() mgl32.Vec3 {
	return l.color
}

func (l *gameLight) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *gameLight) Intensity() float32 {
	return l.intensity
}

func (l *gameLight) SetIntensity(i float32) {
	l.intensity = i
}

func (l *gameLight) ToGPU(t transform.Transform) GPULight {
	return GPULight{
		Position:  t.Position,
		Intensity: l.intensity,
		Color:     l.color,
	}
}
