package embeddings

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single embedding call.
const DefaultTimeout = 30 * time.Second

type timeoutEmbedder struct {
	Embedder
	timeout time.Duration
}

type embedResult struct {
	vectors [][]float32
	err     error
}

// WithTimeout bounds every call of e. A call that outlives the timeout returns ErrTimeout
// even when the backend ignores context cancellation; the backend call is then abandoned.
// Result counts are checked against the input.
func WithTimeout(e Embedder, timeout time.Duration) Embedder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &timeoutEmbedder{Embedder: e, timeout: timeout}
}

// Model delegates to the wrapped embedder.
func (t *timeoutEmbedder) Model() string {
	return ModelName(t.Embedder, "")
}

func (t *timeoutEmbedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	vectors, err := t.call(ctx, func(ctx context.Context) ([][]float32, error) {
		return t.Embedder.EmbedDocuments(ctx, docs)
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrShape, len(vectors), len(docs))
	}
	return vectors, nil
}

func (t *timeoutEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := t.call(ctx, func(ctx context.Context) ([][]float32, error) {
		v, err := t.Embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{v}, nil
	})
	if err != nil {
		return nil, err
	}
	if len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", ErrShape)
	}
	return vectors[0], nil
}

func (t *timeoutEmbedder) call(ctx context.Context, fn func(ctx context.Context) ([][]float32, error)) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	done := make(chan embedResult, 1)
	go func() {
		vectors, err := fn(callCtx)
		done <- embedResult{vectors: vectors, err: err}
	}()
	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, t.timeout, res.err)
		}
		return res.vectors, res.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w after %s", ErrTimeout, t.timeout)
	}
}
