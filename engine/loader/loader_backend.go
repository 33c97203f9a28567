package loader

import (
	"io"

	"github.com/Carmen-Shannon/vike-go/engine/model"
)

// loaderBackend defines the generic interface for parsing model files into CPU-side data.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full model import from the given file path.
	// Companion files such as material libraries are resolved relative to the file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - name: the model name, also used in error messages
	//   - r: the reader providing model data
	//   - dir: directory companion files are resolved against, or "" to skip them
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, dir string) (*model.ImportedModel, error)
}
