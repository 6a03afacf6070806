package vertexai

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/emergencykb/embeddings"
)

// Task types sent with each instance; retrieval models embed queries and passages differently.
const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

// Embedder embeds text with a Vertex AI text-embedding model.
type Embedder struct {
	projectID string
	model     string
	location  string
	scopes    []string
	options   []ClientOption

	mu      sync.Mutex
	client  *Client
	initErr error
}

// NewEmbedder creates a Vertex AI embedder; the client is created on first use,
// from Application Default Credentials unless opts carry a token source.
func NewEmbedder(projectID, model, location string, scopes []string, opts ...ClientOption) *Embedder {
	return &Embedder{
		projectID: projectID,
		model:     model,
		location:  location,
		scopes:    scopes,
		options:   opts,
	}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return e.embed(ctx, docs, taskDocument)
}

func (e *Embedder) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}
	vecs, _, err := client.Embed(ctx, texts, taskType)
	return vecs, err
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for 1 query", embeddings.ErrShape, len(vecs))
	}
	return vecs[0], nil
}

// Model returns the Vertex AI model name.
func (e *Embedder) Model() string {
	model := e.model
	if model == "" {
		model = defaultModel
	}
	return "vertexai/" + model
}

func (e *Embedder) getClient(ctx context.Context) (*Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil || e.initErr != nil {
		return e.client, e.initErr
	}
	if e.projectID == "" {
		e.initErr = fmt.Errorf("vertexai project id is required")
		return nil, e.initErr
	}
	opts := []ClientOption{}
	if e.location != "" {
		opts = append(opts, WithLocation(e.location))
	}
	if len(e.scopes) > 0 {
		opts = append(opts, WithScopes(e.scopes...))
	}
	if e.model != "" {
		opts = append(opts, WithModel(e.model))
	}
	opts = append(opts, e.options...)
	client, err := NewClient(ctx, e.projectID, e.model, opts...)
	if err != nil {
		e.initErr = err
		return nil, err
	}
	e.client = client
	return client, nil
}
