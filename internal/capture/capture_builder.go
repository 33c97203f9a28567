package capture

import "go.uber.org/zap"

// FrameWriterOption is a functional option for configuring a FrameWriter.
type FrameWriterOption func(*frameWriter)

// WithWorkers sets the number of encoding goroutines. Values below 1 are ignored.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - FrameWriterOption: option function to apply
func WithWorkers(n int) FrameWriterOption {
	return func(w *frameWriter) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithPrefix sets the file name prefix (default "frame").
//
// Parameters:
//   - prefix: the prefix
//
// Returns:
//   - FrameWriterOption: option function to apply
func WithPrefix(prefix string) FrameWriterOption {
	return func(w *frameWriter) {
		if prefix != "" {
			w.prefix = prefix
		}
	}
}

// WithLogger sets the logger for write results.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - FrameWriterOption: option function to apply
func WithLogger(logger *zap.Logger) FrameWriterOption {
	return func(w *frameWriter) {
		if logger != nil {
			w.logger = logger
		}
	}
}
