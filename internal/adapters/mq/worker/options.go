package worker

import (
	"github.com/okian/scorebook/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithResolver sets the name resolver consulted before scoring.
func WithResolver(r Resolver) Option {
	return func(w *InMemoryWorker) {
		if r != nil {
			w.resolver = r
		}
	}
}

// WithFailureHandler sets the callback run for each failed job.
func WithFailureHandler(f FailureHandler) Option {
	return func(w *InMemoryWorker) {
		if f != nil {
			w.onFail = f
		}
	}
}
