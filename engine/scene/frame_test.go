package scene

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/vike-go/engine/light"
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(name string) model.Model {
	return model.NewModel(model.WithName(name))
}

// assertTiling checks that ranges are contiguous, ordered and end at end.
func assertTiling(t *testing.T, ranges []DrawRange, start, end uint32) {
	t.Helper()
	require.NotEmpty(t, ranges)
	assert.Equal(t, start, ranges[0].Start)
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].End, ranges[i].Start, "range %d is not contiguous", i)
	}
	assert.Equal(t, end, ranges[len(ranges)-1].End)
}

func TestPreFrameEmptyStore(t *testing.T) {
	s := NewGameObjectStore()
	fd := s.PreFrame()

	assert.Empty(t, fd.Instances)
	require.Len(t, fd.Objects, 1)
	require.Len(t, fd.Lights, 1)
	assert.Equal(t, DrawRange{Start: 0, End: 0}, fd.Objects[0])
	assert.Equal(t, DrawRange{Start: 0, End: 0}, fd.Lights[0])
	assert.Equal(t, uint32(0), fd.LightUniform.Count)
}

func TestPreFrameMergesObjectsSharingAModel(t *testing.T) {
	cube := newModel("cube")
	s := NewGameObjectStore()
	s.NewGameObject("A", transform.Identity(), cube)
	s.NewGameObject("B", transform.Identity(), cube)
	s.NewArray("B", "row", 5, Column{Step: mgl32.Vec3{1, 0, 0}})

	fd := s.PreFrame()

	require.Len(t, fd.Instances, 6)
	require.Len(t, fd.Objects, 1)
	assert.Equal(t, DrawRange{Model: cube, Start: 0, End: 6}, fd.Objects[0])
	assert.Equal(t, uint32(6), fd.Objects[0].Len())

	// A comes first by name, then the five B instances in index order.
	assert.Equal(t, NewInstanceRaw(transform.Identity()), fd.Instances[0])
	for i := range 5 {
		assert.Equal(t, float32(i), fd.Instances[1+i].Model[12])
	}
}

func TestPreFrameGroupsByModelIdentifier(t *testing.T) {
	cube, plane := newModel("cube"), newModel("plane")
	s := NewGameObjectStore()
	s.NewGameObject("a", transform.Identity(), plane)
	s.NewGameObject("b", transform.Identity(), cube)
	s.NewGameObject("c", transform.Identity(), plane)
	s.NewGameObject("d", transform.Identity(), nil)

	fd := s.PreFrame()

	require.Len(t, fd.Instances, 3)
	require.Len(t, fd.Objects, 2)
	assert.Equal(t, DrawRange{Model: cube, Start: 0, End: 1}, fd.Objects[0])
	assert.Equal(t, DrawRange{Model: plane, Start: 1, End: 3}, fd.Objects[1])
	assertTiling(t, fd.Objects, 0, 3)
}

func TestPreFrameKeepsDistinctModelsSharingANameApart(t *testing.T) {
	first, second := newModel("cube"), newModel("cube")
	s := NewGameObjectStore(WithModel("cube-a", first), WithModel("cube-b", second))
	s.NewGameObject("a", transform.Identity(), second)
	s.NewGameObject("b", transform.Identity(), first)
	s.NewGameObject("c", transform.Identity(), second)

	fd := s.PreFrame()

	require.Len(t, fd.Instances, 3)
	require.Len(t, fd.Objects, 2)
	assert.Same(t, second, fd.Objects[0].Model)
	assert.Equal(t, uint32(2), fd.Objects[0].Len())
	assert.Same(t, first, fd.Objects[1].Model)
	assert.Equal(t, uint32(1), fd.Objects[1].Len())
	assertTiling(t, fd.Objects, 0, 3)
}

func TestPreFrameSkipsEmptyIntermediateRanges(t *testing.T) {
	cube, plane := newModel("cube"), newModel("plane")
	s := NewGameObjectStore()
	s.NewGameObject("a", transform.Identity(), cube)
	s.NewArray("a", "none", 0, Column{})
	s.NewGameObject("b", transform.Identity(), plane)

	fd := s.PreFrame()

	require.Len(t, fd.Objects, 1)
	assert.Equal(t, DrawRange{Model: plane, Start: 0, End: 1}, fd.Objects[0])
}

func TestPreFrameFinalRangeClosedEvenWhenEmpty(t *testing.T) {
	cube := newModel("cube")
	s := NewGameObjectStore()
	s.NewGameObject("a", transform.Identity(), cube)
	s.NewArray("a", "none", 0, Column{})

	fd := s.PreFrame()

	assert.Empty(t, fd.Instances)
	require.Len(t, fd.Objects, 1)
	assert.Equal(t, DrawRange{Model: cube, Start: 0, End: 0}, fd.Objects[0])
}

func TestPreFrameArraysConcatenateInNameOrder(t *testing.T) {
	s := NewGameObjectStore()
	s.NewGameObject("a", transform.At(mgl32.Vec3{0, 10, 0}), newModel("cube"))
	s.NewArray("a", "second", 2, Column{Step: mgl32.Vec3{0, 0, 1}})
	s.NewArray("a", "first", 3, Column{Step: mgl32.Vec3{1, 0, 0}})

	fd := s.PreFrame()

	require.Len(t, fd.Instances, 5)
	xs := []float32{0, 1, 2, 0, 0}
	zs := []float32{0, 0, 0, 0, 1}
	for i, inst := range fd.Instances {
		assert.Equal(t, xs[i], inst.Model[12], "instance %d x", i)
		assert.Equal(t, float32(10), inst.Model[13], "instance %d y", i)
		assert.Equal(t, zs[i], inst.Model[14], "instance %d z", i)
	}
}

func TestPreFrameLightsFollowObjects(t *testing.T) {
	cube := newModel("cube")
	s := NewGameObjectStore()
	s.NewGameObject("obj", transform.Identity(), cube)
	s.NewArray("obj", "row", 3, Column{Step: mgl32.Vec3{1, 0, 0}})
	s.NewLight("red", transform.At(mgl32.Vec3{0, 2, 64}), cube, mgl32.Vec3{1, 0, 0}, 1000)
	s.NewLight("green", transform.Identity(), cube, mgl32.Vec3{0, 1, 0}, 1000)

	fd := s.PreFrame()

	require.Len(t, fd.Instances, 5)
	assert.Equal(t, []DrawRange{{Model: cube, Start: 0, End: 3}}, fd.Objects)
	assert.Equal(t, []DrawRange{{Model: cube, Start: 3, End: 5}}, fd.Lights)

	// green sorts before red.
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, fd.Instances[3].Color())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, fd.Instances[4].Color())
	assert.Equal(t, float32(64), fd.Instances[4].Model[14])
}

func TestPreFrameLightWithoutModelStillLights(t *testing.T) {
	s := NewGameObjectStore()
	s.NewLight("sun", transform.At(mgl32.Vec3{1, 2, 3}), nil, mgl32.Vec3{1, 1, 0}, 5)

	fd := s.PreFrame()

	assert.Empty(t, fd.Instances)
	assert.Equal(t, []DrawRange{{}}, fd.Lights)
	require.Equal(t, uint32(1), fd.LightUniform.Count)
	assert.Equal(t, light.GPULight{Position: [3]float32{1, 2, 3}, Intensity: 5, Color: [3]float32{1, 1, 0}}, fd.LightUniform.Lights[0])
}

func TestPreFrameLightUniformCap(t *testing.T) {
	s := NewGameObjectStore()
	for _, name := range []string{"blue", "green", "red"} {
		s.NewLight(name, transform.Identity(), newModel("cube"), mgl32.Vec3{1, 1, 1}, 1000)
		s.NewArray(name, name, 42, Column{Step: mgl32.Vec3{0, 20, 0}})
	}
	s.NewLight("zz", transform.Identity(), nil, mgl32.Vec3{1, 1, 1}, 1)
	s.NewArray("zz", "many", 10, Column{})

	fd := s.PreFrame()

	assert.Equal(t, uint32(light.MaxLights), fd.LightUniform.Count)
	// 126 from the three columns, then two of the ten zz placements.
	assert.Equal(t, float32(1), fd.LightUniform.Lights[127].Intensity)
	// Markers are not capped by the uniform.
	assert.Len(t, fd.Instances, 126)
}

func TestPreFrameInstanceCountMatchesExpansion(t *testing.T) {
	s := NewGameObjectStore()
	cube := newModel("cube")
	s.NewGameObject("cube", transform.Identity(), cube)
	s.NewArray("cube", "cube array", 100, Grid{Columns: 10, Spacing: 3})
	s.NewArray("cube", "cube spiral", 10000, Spiral{Radius: 10, AngleStep: 0.25, Rise: 0.25})
	s.NewGameObject("single", transform.Identity(), cube)

	fd := s.PreFrame()

	assert.Len(t, fd.Instances, 10101)
	assert.Equal(t, []DrawRange{{Model: cube, Start: 0, End: 10101}}, fd.Objects)
}

func TestPreFrameParallelExpansionMatchesSerial(t *testing.T) {
	build := func(opts ...StoreBuilderOption) GameObjectStore {
		s := NewGameObjectStore(opts...)
		s.NewGameObject("cube", transform.At(mgl32.Vec3{1, 2, 3}), newModel("cube"))
		s.NewArray("cube", "spiral", 5000, Spiral{Radius: 14, AngleStep: 0.25, Rise: 0.25})
		s.NewArray("cube", "tilted", 4097, GeneratorFunc(func(i int) transform.Transform {
			return transform.Transform{
				Position: mgl32.Vec3{float32(i), 0, 0},
				Rotation: mgl32.Vec3{0, float32(i) * 0.01, 0},
				Scale:    mgl32.Vec3{1, 1, 1},
			}
		}))
		return s
	}

	serial := build(WithExpansionWorkers(1)).PreFrame()
	parallel := build(WithExpansionWorkers(4), WithParallelExpansionThreshold(64)).PreFrame()

	require.Len(t, parallel.Instances, 9097)
	assert.True(t, bytes.Equal(MarshalInstances(serial.Instances), MarshalInstances(parallel.Instances)))
	assert.Equal(t, serial.Objects, parallel.Objects)
}

func TestPreFrameIsDeterministicAndPure(t *testing.T) {
	s := NewGameObjectStore(WithExpansionWorkers(3), WithParallelExpansionThreshold(16))
	cube, plane := newModel("cube"), newModel("plane")
	for i := range 20 {
		m := cube
		if i%3 == 0 {
			m = plane
		}
		name := fmt.Sprintf("obj-%02d", i)
		s.NewGameObject(name, transform.At(mgl32.Vec3{float32(i), 0, 0}), m)
		s.NewArray(name, "ring", i*5, Ring{Radius: 4, Count: max(i*5, 1), Axis: mgl32.Vec3{0, 1, 0}})
	}
	s.NewLight("l", transform.Identity(), cube, mgl32.Vec3{1, 0, 0}, 1)

	before := *s.Objects()[4].Transform()
	first := s.PreFrame()
	second := s.PreFrame()

	assert.True(t, bytes.Equal(MarshalInstances(first.Instances), MarshalInstances(second.Instances)))
	assert.Equal(t, first.Objects, second.Objects)
	assert.Equal(t, first.Lights, second.Lights)
	assert.Equal(t, first.LightUniform.Marshal(), second.LightUniform.Marshal())
	assert.Equal(t, before, *s.Objects()[4].Transform())

	total := uint32(len(first.Instances))
	assertTiling(t, append(first.Objects, first.Lights...), 0, total)
}

func TestPreFrameDanglingArrayProducesNothing(t *testing.T) {
	s := NewGameObjectStore()
	s.NewArray("ghost", "row", 10, Column{Step: mgl32.Vec3{1, 0, 0}})

	fd := s.PreFrame()
	assert.Empty(t, fd.Instances)

	// The array comes alive once its target exists.
	s.NewGameObject("ghost", transform.Identity(), newModel("cube"))
	assert.Len(t, s.PreFrame().Instances, 10)
}

func TestPreFrameReflectsInPlaceMutation(t *testing.T) {
	s := NewGameObjectStore()
	obj := s.NewGameObject("a", transform.Identity(), newModel("cube"))
	obj.Transform().Position = mgl32.Vec3{5, 0, 0}

	fd := s.PreFrame()
	assert.Equal(t, float32(5), fd.Instances[0].Model[12])
}

func TestAssertCapacity(t *testing.T) {
	fits := FrameData{Instances: make([]InstanceRaw, MaxInstances)}
	assert.NotPanics(t, fits.AssertCapacity)

	over := FrameData{Instances: make([]InstanceRaw, MaxInstances+1)}
	assert.PanicsWithValue(t, "scene: instance buffer capacity exceeded", over.AssertCapacity)
}
