package ollama

import (
	"context"
	"fmt"
)

// Embedder bridges the client to the embeddings.Embedder interface.
type Embedder struct {
	C *Client
}

// NewClient creates a client for model at baseURL (default local daemon).
func NewClient(model, baseURL string, opts ...ClientOption) *Client {
	if baseURL != "" {
		opts = append(opts, WithBaseURL(baseURL))
	}
	return NewClientWithOptions(model, opts...)
}

// NewEmbedder creates an ollama backed embedder.
func NewEmbedder(model, baseURL string, opts ...ClientOption) *Embedder {
	return &Embedder{C: NewClient(model, baseURL, opts...)}
}

// Model returns the ollama model name.
func (e *Embedder) Model() string {
	if e == nil || e.C == nil {
		return ""
	}
	return "ollama/" + e.C.Model
}

func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	if e == nil || e.C == nil {
		return nil, fmt.Errorf("ollama embedder not configured")
	}
	vecs, _, err := e.C.Embed(ctx, docs)
	return vecs, err
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 query", len(vecs))
	}
	return vecs[0], nil
}
