package embeddings

import (
	"context"
	"errors"
)

// Embedder is a minimal interface for computing vector embeddings
// for documents and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Modeler is implemented by embedders that can report their model identifier.
type Modeler interface {
	Model() string
}

var (
	// ErrTimeout is returned when an embedding call exceeds its deadline.
	ErrTimeout = errors.New("embedding timed out")
	// ErrUnavailable marks transient backend failures (throttling, 5xx).
	ErrUnavailable = errors.New("embedding backend unavailable")
	// ErrShape is returned when a backend yields the wrong number of vectors.
	ErrShape = errors.New("embedding shape mismatch")
)

// IsRetryable reports whether err is a transient embedding failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}

// ModelName returns the embedder model identifier, or fallback.
func ModelName(e Embedder, fallback string) string {
	if m, ok := e.(Modeler); ok && m.Model() != "" {
		return m.Model()
	}
	return fallback
}
