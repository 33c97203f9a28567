package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vike-go/engine/renderer/material"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for identifiers that are neither builtins nor a known file extension.
var ErrUnsupportedFormat = errors.New("loader: unsupported model format")

// Uploader creates the GPU resources of a loaded model. The renderer satisfies it.
type Uploader interface {
	// CreateMeshBuffers uploads one mesh and returns a provider holding its vertex and index buffers.
	CreateMeshBuffers(label string, vertexData, indexData []byte, indexCount uint32) (bind_group_provider.BindGroupProvider, error)

	// CreateMaterial uploads the material's textures and parameters and attaches its bind group.
	CreateMaterial(mat material.Material) error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	uploader Uploader
	assetDir string
	logger   *zap.Logger

	modelCache map[string]model.Model

	backends map[string]loaderBackend
}

// Loader defines the public-facing interface for loading and caching 3D models.
// It abstracts the file format behind a backend selected by extension and manages a
// cache of previously loaded models keyed by identifier.
type Loader interface {
	scene.ModelLoader

	// Import parses a model without uploading it or touching the cache.
	//
	// Parameters:
	//   - identifier: a file path or builtin name
	//
	// Returns:
	//   - *model.ImportedModel: the CPU-side model data
	//   - error: ErrUnsupportedFormat, a file error, or ErrMalformedModel
	Import(identifier string) (*model.ImportedModel, error)

	// LoadReader imports an OBJ stream and caches the result under name.
	// Material libraries referenced by the stream are not resolved.
	//
	// Parameters:
	//   - name: the cache key and model name
	//   - r: the reader providing OBJ data
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if parsing or upload fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Get retrieves a cached model.
	//
	// Parameters:
	//   - identifier: the cache key
	//
	// Returns:
	//   - model.Model: the model, or nil if not loaded
	Get(identifier string) model.Model

	// Models returns a snapshot of the cache.
	//
	// Returns:
	//   - map[string]model.Model: identifier to model
	Models() map[string]model.Model

	// Identifiers returns the cached identifiers in sorted order.
	//
	// Returns:
	//   - []string: the identifiers
	Identifiers() []string

	// Release frees the GPU resources of every cached model and empties the cache.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the OBJ backend registered.
// Without an uploader, models are built CPU-only and their meshes carry no buffers.
//
// Parameters:
//   - options: functional options configuring the loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:     zap.NewNop(),
		modelCache: make(map[string]model.Model),
	}
	for _, opt := range options {
		opt(l)
	}
	l.backends = map[string]loaderBackend{
		".obj": newOBJLoaderBackend(l.logger),
	}
	return l
}

func (l *loader) Load(identifier string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[identifier]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	imported, err := l.Import(identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", identifier, err)
	}
	return l.store(identifier, imported)
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	imported, err := l.backends[".obj"].LoadReader(name, r, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.store(name, imported)
}

func (l *loader) Import(identifier string) (*model.ImportedModel, error) {
	if isBuiltin(identifier) {
		src, ok := builtins[identifier]
		if !ok {
			return nil, fmt.Errorf("%w: unknown builtin %q", ErrUnsupportedFormat, identifier)
		}
		return l.backends[".obj"].LoadReader(identifier, strings.NewReader(src), "")
	}

	backend, err := l.resolveBackend(identifier)
	if err != nil {
		return nil, err
	}
	imported, err := backend.Load(l.resolvePath(identifier))
	if err != nil {
		return nil, err
	}
	imported.Name = identifier
	return imported, nil
}

func (l *loader) Get(identifier string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[identifier]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) Identifiers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.modelCache))
	for k := range l.modelCache {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.modelCache {
		m.Release()
	}
	l.modelCache = make(map[string]model.Model)
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	backend, ok := l.backends[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return backend, nil
}

func (l *loader) resolvePath(path string) string {
	if l.assetDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.assetDir, path)
}

// store uploads imported and caches it unless another goroutine cached the identifier first.
func (l *loader) store(identifier string, imported *model.ImportedModel) (model.Model, error) {
	m, err := l.importedToModel(imported)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[identifier]; ok {
		m.Release()
		return cached, nil
	}
	l.modelCache[identifier] = m
	l.logger.Debug("model loaded",
		zap.String("identifier", identifier),
		zap.Int("meshes", len(imported.Meshes)),
		zap.Int("materials", len(imported.Materials)))
	return m, nil
}

// importedToModel converts an ImportedModel (CPU data) into a Model (engine-ready).
// Each mesh gets its own vertex and index buffers and each material its own bind group
// when an uploader is configured.
//
// Parameters:
//   - imported: the CPU-side ImportedModel containing mesh and material data
//
// Returns:
//   - model.Model: the engine-ready Model
//   - error: error if GPU resource creation fails
func (l *loader) importedToModel(imported *model.ImportedModel) (model.Model, error) {
	mats := make([]material.Material, 0, len(imported.Materials))
	meshes := make([]model.Mesh, 0, len(imported.Meshes))
	partial := func() model.Model {
		return model.NewModel(model.WithMeshes(meshes...), model.WithMaterials(mats...))
	}

	for _, im := range imported.Materials {
		mat := material.FromImported(im)
		if l.uploader != nil {
			if err := l.uploader.CreateMaterial(mat); err != nil {
				partial().Release()
				return nil, fmt.Errorf("failed to init material %q of %q: %w", im.Name, imported.Name, err)
			}
		}
		mats = append(mats, mat)
	}

	for _, im := range imported.Meshes {
		mesh := model.Mesh{Name: im.Name, MaterialIndex: im.MaterialIndex}
		if l.uploader != nil {
			provider, err := l.uploader.CreateMeshBuffers(
				imported.Name+"/"+im.Name,
				model.MarshalVertices(im.Vertices),
				model.MarshalIndices(im.Indices),
				uint32(len(im.Indices)),
			)
			if err != nil {
				partial().Release()
				return nil, fmt.Errorf("failed to init mesh %q of %q: %w", im.Name, imported.Name, err)
			}
			mesh.Provider = provider
		}
		meshes = append(meshes, mesh)
	}

	return model.NewModel(
		model.WithName(imported.Name),
		model.WithMeshes(meshes...),
		model.WithMaterials(mats...),
		model.WithBoundingRadius(imported.BoundingRadius()),
	), nil
}
