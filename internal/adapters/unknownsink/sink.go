// Package unknownsink provides destinations for plays the classifier could
// not place. Sinks are write-only.
package unknownsink

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/okian/scorebook/internal/adapters/repository"
	"github.com/okian/scorebook/internal/domain/outcome"
)

// DefaultPath is where FileSink writes when no path is configured.
const DefaultPath = "unknown_plays.txt"

// FileSink appends each raw description to a text file, one per line.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink appending to path.
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultPath
	}
	return &FileSink{path: path}
}

// Path returns the file written to.
func (s *FileSink) Path() string { return s.path }

// RecordUnknown appends p.Description. Line breaks inside the description
// are flattened so each play stays on one line.
func (s *FileSink) RecordUnknown(_ context.Context, p outcome.UnknownPlay) error {
	line := strings.Join(strings.Fields(p.Description), " ") + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	return f.Close()
}

// StoreSink persists unknown plays through a repository.
type StoreSink struct {
	store repository.UnknownStore
}

// NewStoreSink wraps store.
func NewStoreSink(store repository.UnknownStore) *StoreSink {
	return &StoreSink{store: store}
}

// RecordUnknown writes p to the store.
func (s *StoreSink) RecordUnknown(ctx context.Context, p outcome.UnknownPlay) error {
	return s.store.RecordUnknown(ctx, p)
}

// Multi fans a play out to every sink. All sinks run; the first error is
// returned.
type Multi []outcome.Sink

// RecordUnknown implements outcome.Sink.
func (m Multi) RecordUnknown(ctx context.Context, p outcome.UnknownPlay) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.RecordUnknown(ctx, p); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var (
	_ outcome.Sink = (*FileSink)(nil)
	_ outcome.Sink = (*StoreSink)(nil)
	_ outcome.Sink = Multi(nil)
)
