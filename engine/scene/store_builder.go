package scene

import (
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"go.uber.org/zap"
)

// StoreBuilderOption is a functional option for configuring a GameObjectStore.
// Use the With* functions to create options.
type StoreBuilderOption func(s *store)

// WithModelLoader sets the loader LoadModel delegates cache misses to.
//
// Parameters:
//   - l: the model loader
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithModelLoader(l ModelLoader) StoreBuilderOption {
	return func(s *store) {
		s.loader = l
	}
}

// WithLogger sets the logger used for model cache events.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) StoreBuilderOption {
	return func(s *store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExpansionWorkers sets the number of worker goroutines that expand large arrays
// during PreFrame. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithExpansionWorkers(n int) StoreBuilderOption {
	return func(s *store) {
		if n < 1 {
			n = 1
		}
		s.expansionWorkers = n
	}
}

// WithParallelExpansionThreshold sets the array count at which PreFrame expands an
// array on the worker pool. Smaller arrays are expanded inline.
//
// Parameters:
//   - n: the threshold (minimum 1)
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithParallelExpansionThreshold(n int) StoreBuilderOption {
	return func(s *store) {
		if n < 1 {
			n = 1
		}
		s.parallelThreshold = n
	}
}

// WithModel pre-seeds the model cache so LoadModel(identifier) returns m without a loader.
//
// Parameters:
//   - identifier: the cache key
//   - m: the model
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithModel(identifier string, m model.Model) StoreBuilderOption {
	return func(s *store) {
		s.models[identifier] = m
	}
}
