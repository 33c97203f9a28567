package scene

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/vike-go/engine/game_object"
	"github.com/Carmen-Shannon/vike-go/engine/light"
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultParallelExpansionThreshold is the array count at which PreFrame expands an
// array on the worker pool instead of inline.
const DefaultParallelExpansionThreshold = 4096

// ErrNoModelLoader is returned by LoadModel on a cache miss when the store has no loader.
var ErrNoModelLoader = errors.New("scene: no model loader configured")

// ModelLoader resolves a model identifier to a GPU-ready Model.
type ModelLoader interface {
	// Load reads, parses and uploads the model named by identifier.
	//
	// Parameters:
	//   - identifier: a file path or builtin name
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if the model could not be loaded
	Load(identifier string) (model.Model, error)
}

// GameObjectStore defines the interface for the scene's object, light, array and model registry.
// Objects and lights live in separate name-keyed namespaces and are always iterated in
// name order. Arrays are keyed by (target, name) and multiply whatever object or light
// currently carries the target name. PreFrame compiles the whole store into a flat
// instance buffer and the draw ranges over it.
type GameObjectStore interface {
	// NewGameObject inserts an object, replacing any object with the same name.
	// Arrays targeting the name are kept.
	//
	// Parameters:
	//   - name: the object's key
	//   - t: the initial transform
	//   - mdl: the model to draw, or nil
	//
	// Returns:
	//   - game_object.GameObject: the stored handle
	NewGameObject(name string, t transform.Transform, mdl model.Model) game_object.GameObject

	// NewLight inserts a light, replacing any light with the same name.
	// Arrays targeting the name are kept.
	//
	// Parameters:
	//   - name: the light's key
	//   - t: the initial transform
	//   - mdl: the marker model, or nil
	//   - color: the RGB colour
	//   - intensity: the scalar intensity
	//
	// Returns:
	//   - light.GameLight: the stored handle
	NewLight(name string, t transform.Transform, mdl model.Model, color mgl32.Vec3, intensity float32) light.GameLight

	// NewArray registers an array under (target, name), replacing the generator and
	// count of an existing one. A negative count is treated as zero. A nil gen is
	// rejected with a warning: the array is returned but not stored, so an existing
	// array under the same key and the target's base instance are left untouched.
	//
	// Parameters:
	//   - target: the object or light name to multiply
	//   - name: the array's key within the target
	//   - count: the number of instances
	//   - gen: the offset generator
	//
	// Returns:
	//   - Array: the stored array, or the unstored one when gen is nil
	NewArray(target, name string, count int, gen ArrayGenerator) Array

	// DeleteObject removes an object. Arrays targeting it are not removed.
	//
	// Parameters:
	//   - name: the object's key
	//
	// Returns:
	//   - bool: true if the object existed
	DeleteObject(name string) bool

	// DeleteLight removes a light. Arrays targeting it are not removed.
	//
	// Parameters:
	//   - name: the light's key
	//
	// Returns:
	//   - bool: true if the light existed
	DeleteLight(name string) bool

	// DeleteArray removes an array.
	//
	// Parameters:
	//   - target: the array's target
	//   - name: the array's key within the target
	//
	// Returns:
	//   - bool: true if the array existed
	DeleteArray(target, name string) bool

	// LoadModel returns the cached model for identifier, loading and caching it on a miss.
	// Failed loads are not cached.
	//
	// Parameters:
	//   - identifier: a file path or builtin name understood by the loader
	//
	// Returns:
	//   - model.Model: the model
	//   - error: ErrNoModelLoader, or the wrapped loader error
	LoadModel(identifier string) (model.Model, error)

	// Object looks up an object by name.
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	//   - bool: false when absent
	Object(name string) (game_object.GameObject, bool)

	// Light looks up a light by name.
	//
	// Returns:
	//   - light.GameLight: the light, or nil
	//   - bool: false when absent
	Light(name string) (light.GameLight, bool)

	// Array looks up an array by (target, name).
	//
	// Returns:
	//   - Array: the array, or the zero Array
	//   - bool: false when absent
	Array(target, name string) (Array, bool)

	// Objects returns every object in name order.
	Objects() []game_object.GameObject

	// Lights returns every light in name order.
	Lights() []light.GameLight

	// ArraysFor returns the arrays targeting target in array-name order.
	ArraysFor(target string) []Array

	// Models returns a copy of the model cache keyed by identifier.
	Models() map[string]model.Model

	// PreFrame compiles the store into the instance buffer, draw ranges and light
	// uniform for one frame. It never mutates the store and is deterministic.
	//
	// Returns:
	//   - FrameData: the compiled frame
	PreFrame() FrameData

	// Close releases the GPU resources of every cached model, stops the expansion
	// workers and empties the store. The store stays usable; arrays then expand serially.
	Close()
}

type store struct {
	mu *sync.RWMutex

	objects map[string]game_object.GameObject
	lights  map[string]light.GameLight
	arrays  map[string]map[string]Array // target -> array name -> array
	models  map[string]model.Model      // identifier -> model

	loader ModelLoader
	logger *zap.Logger

	// expansionPool fills pre-sized instance slots for arrays at or above parallelThreshold.
	// It is started on first parallel expansion and stopped by Close.
	poolMu            sync.Mutex
	expansionPool     worker.DynamicWorkerPool
	expansionWorkers  int
	parallelThreshold int

	// closed is set by Close; later frames expand serially.
	closed bool
}

var _ GameObjectStore = &store{}

// NewGameObjectStore creates an empty store with the given options applied.
//
// Parameters:
//   - options: functional options configuring the store
//
// Returns:
//   - GameObjectStore: the new store
func NewGameObjectStore(options ...StoreBuilderOption) GameObjectStore {
	s := &store{
		mu:                &sync.RWMutex{},
		objects:           make(map[string]game_object.GameObject),
		lights:            make(map[string]light.GameLight),
		arrays:            make(map[string]map[string]Array),
		models:            make(map[string]model.Model),
		logger:            zap.NewNop(),
		expansionWorkers:  max(runtime.NumCPU()-1, 1),
		parallelThreshold: DefaultParallelExpansionThreshold,
	}

	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *store) NewGameObject(name string, t transform.Transform, mdl model.Model) game_object.GameObject {
	obj := game_object.NewGameObject(name, game_object.WithTransform(t), game_object.WithModel(mdl))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = obj
	return obj
}

func (s *store) NewLight(name string, t transform.Transform, mdl model.Model, color mgl32.Vec3, intensity float32) light.GameLight {
	l := light.NewLight(name,
		light.WithTransform(t),
		light.WithModel(mdl),
		light.WithColor(color),
		light.WithIntensity(intensity),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights[name] = l
	return l
}

func (s *store) NewArray(target, name string, count int, gen ArrayGenerator) Array {
	a := Array{
		Name:      name,
		Target:    target,
		Count:     max(count, 0),
		Generator: gen,
	}
	if gen == nil {
		s.logger.Warn("array without generator ignored",
			zap.String("target", target),
			zap.String("array", name),
		)
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byName, ok := s.arrays[target]
	if !ok {
		byName = make(map[string]Array)
		s.arrays[target] = byName
	}
	byName[name] = a
	return a
}

func (s *store) DeleteObject(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	delete(s.objects, name)
	return ok
}

func (s *store) DeleteLight(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lights[name]
	delete(s.lights, name)
	return ok
}

func (s *store) DeleteArray(target, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName, ok := s.arrays[target]
	if !ok {
		return false
	}
	if _, ok = byName[name]; !ok {
		return false
	}
	delete(byName, name)
	if len(byName) == 0 {
		delete(s.arrays, target)
	}
	return true
}

func (s *store) LoadModel(identifier string) (model.Model, error) {
	s.mu.RLock()
	cached, ok := s.models[identifier]
	loader := s.loader
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	if loader == nil {
		return nil, ErrNoModelLoader
	}

	start := time.Now()
	m, err := loader.Load(identifier)
	if err != nil {
		s.logger.Warn("model load failed", zap.String("identifier", identifier), zap.Error(err))
		return nil, fmt.Errorf("scene: load model %q: %w", identifier, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.models[identifier]; ok {
		return existing, nil
	}
	s.models[identifier] = m
	s.logger.Debug("model loaded",
		zap.String("identifier", identifier),
		zap.Int("meshes", len(m.Meshes())),
		zap.Duration("took", time.Since(start)),
	)
	return m, nil
}

func (s *store) Object(name string) (game_object.GameObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	return obj, ok
}

func (s *store) Light(name string) (light.GameLight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lights[name]
	return l, ok
}

func (s *store) Array(target, name string) (Array, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.arrays[target][name]
	return a, ok
}

func (s *store) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedObjects()
}

func (s *store) Lights() []light.GameLight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLights()
}

func (s *store) ArraysFor(target string) []Array {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arraysFor(target)
}

func (s *store) Models() map[string]model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Model, len(s.models))
	for k, v := range s.models {
		out[k] = v
	}
	return out
}

func (s *store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.models {
		m.Release()
		s.logger.Debug("model released", zap.String("identifier", id))
	}
	clear(s.models)
	clear(s.objects)
	clear(s.lights)
	clear(s.arrays)

	s.closed = true
	s.poolMu.Lock()
	defer s.poolMu.Unlock()
	if s.expansionPool != nil {
		s.expansionPool.Stop()
		s.expansionPool = nil
	}
}

// pool returns the expansion pool, starting it on first use, or nil once the store is
// closed. Callers hold s.mu.
func (s *store) pool() worker.DynamicWorkerPool {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()
	if s.closed {
		return nil
	}
	if s.expansionPool == nil {
		s.expansionPool = worker.NewDynamicWorkerPool(s.expansionWorkers, 256, 1*time.Second)
	}
	return s.expansionPool
}

// sortedObjects returns the objects in name order. Callers hold s.mu.
func (s *store) sortedObjects() []game_object.GameObject {
	out := make([]game_object.GameObject, 0, len(s.objects))
	for _, obj := range s.objects {
		out = append(out, obj)
	}
	slices.SortFunc(out, func(a, b game_object.GameObject) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

// sortedLights returns the lights in name order. Callers hold s.mu.
func (s *store) sortedLights() []light.GameLight {
	out := make([]light.GameLight, 0, len(s.lights))
	for _, l := range s.lights {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b light.GameLight) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

// arraysFor returns the arrays of target in array-name order. Callers hold s.mu.
func (s *store) arraysFor(target string) []Array {
	byName := s.arrays[target]
	out := make([]Array, 0, len(byName))
	for _, a := range byName {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Array) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
