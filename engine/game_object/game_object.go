package game_object

import (
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
)

type gameObject struct {
	name      string
	transform transform.Transform
	mdl       model.Model
}

// GameObject defines the interface for a named scene entity.
// The object is placed by its Transform and drawn with its Model; an object without a
// model is kept in the store but contributes no instances. Arrays registered against
// the object's name multiply it into many instances at frame compile time.
type GameObject interface {
	// Name returns the object's key in the store.
	//
	// Returns:
	//   - string: the object name
	Name() string

	// Transform returns the object's placement for in-place mutation between frames.
	//
	// Returns:
	//   - *transform.Transform: pointer to the owned transform
	Transform() *transform.Transform

	// SetTransform replaces the object's placement.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t transform.Transform)

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// SetModel assigns a Model to this object. Passing nil stops the object from drawing.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject at the identity transform with the specified options applied.
//
// Parameters:
//   - name: the object's key
//   - options: a variadic list of GameObjectBuilderOption functions to configure the GameObject
//
// Returns:
//   - GameObject: a new GameObject configured with the provided options
func NewGameObject(name string, options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		name:      name,
		transform: transform.Identity(),
	}
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Transform() *transform.Transform {
	return &g.transform
}

func (g *gameObject) SetTransform(t transform.Transform) {
	g.transform = t
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) SetModel(m model.Model) {
	g.mdl = m
}
