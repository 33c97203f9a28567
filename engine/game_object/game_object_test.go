package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject("cube")
	assert.Equal(t, "cube", obj.Name())
	assert.Equal(t, transform.Identity(), *obj.Transform())
	assert.Nil(t, obj.Model())
}

func TestBuilderOptions(t *testing.T) {
	m := model.NewModel(model.WithName("cube"))
	obj := NewGameObject("a",
		WithModel(m),
		WithPosition(1, 2, 3),
		WithRotation(0, 0.5, 0),
		WithScale(2, 2, 2),
	)
	assert.Same(t, m, obj.Model())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, obj.Transform().Position)
	assert.Equal(t, mgl32.Vec3{0, 0.5, 0}, obj.Transform().Rotation)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, obj.Transform().Scale)
}

func TestTransformMutatesInPlace(t *testing.T) {
	obj := NewGameObject("a", WithTransform(transform.At(mgl32.Vec3{0, 1, 0})))
	obj.Transform().Rotation[1] += 0.25
	assert.Equal(t, float32(0.25), obj.Transform().Rotation[1])

	obj.SetTransform(transform.Identity())
	assert.Equal(t, transform.Identity(), *obj.Transform())
}

func TestSetModelNilStopsDrawing(t *testing.T) {
	obj := NewGameObject("a", WithModel(model.NewModel(model.WithName("cube"))))
	obj.SetModel(nil)
	assert.Nil(t, obj.Model())
}
