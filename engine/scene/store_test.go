package scene

import (
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{calls: make(map[string]int), fail: make(map[string]error)}
}

func (f *fakeLoader) Load(identifier string) (model.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[identifier]++
	if err, ok := f.fail[identifier]; ok {
		return nil, err
	}
	return model.NewModel(model.WithName(identifier)), nil
}

func TestNewGameObjectReplacesByName(t *testing.T) {
	s := NewGameObjectStore()
	first := s.NewGameObject("a", transform.Identity(), nil)
	second := s.NewGameObject("a", transform.At(mgl32.Vec3{1, 0, 0}), nil)

	got, ok := s.Object("a")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
	assert.Len(t, s.Objects(), 1)
}

func TestReplaceKeepsArrays(t *testing.T) {
	s := NewGameObjectStore()
	s.NewGameObject("a", transform.Identity(), newModel("cube"))
	s.NewArray("a", "row", 4, Column{Step: mgl32.Vec3{1, 0, 0}})
	s.NewGameObject("a", transform.Identity(), newModel("cube"))

	assert.Len(t, s.ArraysFor("a"), 1)
	assert.Len(t, s.PreFrame().Instances, 4)
}

func TestNewArrayReplacesAndClampsCount(t *testing.T) {
	s := NewGameObjectStore()
	s.NewArray("a", "row", 4, Column{})
	a := s.NewArray("a", "row", -3, Grid{Columns: 2})

	assert.Equal(t, 0, a.Count)
	got, ok := s.Array("a", "row")
	require.True(t, ok)
	assert.Equal(t, 0, got.Count)
	assert.IsType(t, Grid{}, got.Generator)
	assert.Len(t, s.ArraysFor("a"), 1)
}

func TestLookupsOnMissingKeys(t *testing.T) {
	s := NewGameObjectStore()

	obj, ok := s.Object("nope")
	assert.False(t, ok)
	assert.Nil(t, obj)

	l, ok := s.Light("nope")
	assert.False(t, ok)
	assert.Nil(t, l)

	a, ok := s.Array("nope", "nope")
	assert.False(t, ok)
	assert.Equal(t, Array{}, a)

	assert.Empty(t, s.ArraysFor("nope"))
}

func TestDeleteReportsExistence(t *testing.T) {
	s := NewGameObjectStore()
	s.NewGameObject("a", transform.Identity(), nil)
	s.NewLight("l", transform.Identity(), nil, mgl32.Vec3{1, 1, 1}, 1)
	s.NewArray("a", "row", 1, Column{})

	assert.True(t, s.DeleteObject("a"))
	assert.False(t, s.DeleteObject("a"))
	assert.True(t, s.DeleteLight("l"))
	assert.False(t, s.DeleteLight("l"))
	assert.True(t, s.DeleteArray("a", "row"))
	assert.False(t, s.DeleteArray("a", "row"))
	assert.False(t, s.DeleteArray("missing", "row"))
}

func TestDeleteObjectDoesNotCascadeToArrays(t *testing.T) {
	s := NewGameObjectStore()
	s.NewGameObject("a", transform.Identity(), newModel("cube"))
	s.NewArray("a", "row", 3, Column{Step: mgl32.Vec3{1, 0, 0}})

	require.True(t, s.DeleteObject("a"))
	_, ok := s.Array("a", "row")
	assert.True(t, ok)
	assert.Empty(t, s.PreFrame().Instances)

	s.NewGameObject("a", transform.Identity(), newModel("cube"))
	assert.Len(t, s.PreFrame().Instances, 3)
}

func TestObjectsAndLightsAreSortedByName(t *testing.T) {
	s := NewGameObjectStore()
	for _, n := range []string{"c", "a", "b"} {
		s.NewGameObject(n, transform.Identity(), nil)
		s.NewLight(n, transform.Identity(), nil, mgl32.Vec3{}, 1)
		s.NewArray("t", n, 1, Column{})
	}

	var objNames, lightNames, arrayNames []string
	for _, o := range s.Objects() {
		objNames = append(objNames, o.Name())
	}
	for _, l := range s.Lights() {
		lightNames = append(lightNames, l.Name())
	}
	for _, a := range s.ArraysFor("t") {
		arrayNames = append(arrayNames, a.Name)
	}
	want := []string{"a", "b", "c"}
	assert.Equal(t, want, objNames)
	assert.Equal(t, want, lightNames)
	assert.Equal(t, want, arrayNames)
}

func TestObjectsAndLightsAreSeparateNamespaces(t *testing.T) {
	s := NewGameObjectStore()
	s.NewGameObject("x", transform.Identity(), nil)
	s.NewLight("x", transform.Identity(), nil, mgl32.Vec3{}, 1)

	assert.True(t, s.DeleteObject("x"))
	_, ok := s.Light("x")
	assert.True(t, ok)
}

func TestLoadModelCachesSuccess(t *testing.T) {
	loader := newFakeLoader()
	s := NewGameObjectStore(WithModelLoader(loader), WithLogger(zap.NewNop()))

	first, err := s.LoadModel("cube.obj")
	require.NoError(t, err)
	second, err := s.LoadModel("cube.obj")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.calls["cube.obj"])
	assert.Contains(t, s.Models(), "cube.obj")
}

func TestLoadModelDoesNotCacheFailure(t *testing.T) {
	loader := newFakeLoader()
	boom := errors.New("boom")
	loader.fail["bad.obj"] = boom
	s := NewGameObjectStore(WithModelLoader(loader))

	_, err := s.LoadModel("bad.obj")
	require.ErrorIs(t, err, boom)
	_, err = s.LoadModel("bad.obj")
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 2, loader.calls["bad.obj"])
	assert.NotContains(t, s.Models(), "bad.obj")
}

func TestLoadModelWithoutLoader(t *testing.T) {
	s := NewGameObjectStore()
	_, err := s.LoadModel("cube.obj")
	assert.ErrorIs(t, err, ErrNoModelLoader)
}

func TestWithModelPreSeedsCache(t *testing.T) {
	cube := newModel("cube")
	s := NewGameObjectStore(WithModel("builtin:cube", cube))

	got, err := s.LoadModel("builtin:cube")
	require.NoError(t, err)
	assert.Same(t, cube, got)
}

func TestModelsReturnsCopy(t *testing.T) {
	s := NewGameObjectStore(WithModel("a", newModel("a")))
	m := s.Models()
	delete(m, "a")
	assert.Len(t, s.Models(), 1)
}

func TestCloseEmptiesStore(t *testing.T) {
	s := NewGameObjectStore(WithModel("a", newModel("a")))
	s.NewGameObject("o", transform.Identity(), nil)
	s.NewArray("o", "row", 1, Column{})
	s.Close()

	assert.Empty(t, s.Models())
	assert.Empty(t, s.Objects())
	assert.Empty(t, s.ArraysFor("o"))
}

func TestNewArrayRejectsNilGenerator(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewGameObjectStore(WithLogger(zap.New(core)))
	cube := newModel("cube")
	s.NewGameObject("a", transform.Identity(), cube)
	s.NewArray("a", "row", 3, Column{Step: mgl32.Vec3{1, 0, 0}})

	a := s.NewArray("a", "row", 10, nil)
	assert.Nil(t, a.Generator)

	got, ok := s.Array("a", "row")
	require.True(t, ok)
	assert.Equal(t, 3, got.Count)
	assert.Len(t, s.PreFrame().Instances, 3)

	s.NewArray("a", "other", 5, nil)
	_, ok = s.Array("a", "other")
	assert.False(t, ok)

	entries := logs.FilterMessage("array without generator ignored").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ContextMap()["target"])
	assert.Equal(t, "row", entries[0].ContextMap()["array"])
}

func TestCloseWithoutParallelExpansionStartsNoWorkers(t *testing.T) {
	before := runtime.NumGoroutine()
	for range 10 {
		s := NewGameObjectStore(WithExpansionWorkers(4))
		s.NewGameObject("a", transform.Identity(), newModel("cube"))
		s.NewArray("a", "row", 8, Column{})
		s.PreFrame()
		s.Close()
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
}

func TestCloseStopsExpansionPool(t *testing.T) {
	s := NewGameObjectStore(WithExpansionWorkers(4), WithParallelExpansionThreshold(16)).(*store)
	cube := newModel("cube")
	s.NewGameObject("a", transform.Identity(), cube)
	s.NewArray("a", "row", 100, Column{Step: mgl32.Vec3{1, 0, 0}})

	require.Len(t, s.PreFrame().Instances, 100)
	require.NotNil(t, s.expansionPool)

	s.Close()
	assert.Nil(t, s.expansionPool)
	s.Close()

	s.NewGameObject("a", transform.Identity(), cube)
	s.NewArray("a", "row", 100, Column{Step: mgl32.Vec3{1, 0, 0}})
	fd := s.PreFrame()
	require.Len(t, fd.Instances, 100)
	assert.Equal(t, float32(99), fd.Instances[99].Model[12])
	assert.Nil(t, s.expansionPool)
}
