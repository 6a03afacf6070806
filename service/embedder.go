package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/embeddings/ollama"
	"github.com/viant/emergencykb/embeddings/openai"
	"github.com/viant/emergencykb/embeddings/simple"
	"github.com/viant/emergencykb/embeddings/vertexai"
)

// DefaultOllamaModel is the sentence embedding model used when none is configured.
const DefaultOllamaModel = "all-minilm"

// SelectEmbedder returns the backend named by cfg: ollama (default), openai, vertexai or simple.
// Timeouts and query caching are applied by the Service, not here.
func SelectEmbedder(cfg EmbedderConfig) (embeddings.Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", "ollama":
		model := cfg.Model
		if model == "" {
			model = DefaultOllamaModel
		}
		return ollama.NewEmbedder(model, cfg.BaseURL), nil
	case "openai":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		client := openai.NewClient(apiKey, cfg.Model, openai.WithBaseURL(cfg.BaseURL))
		return &openai.Embedder{C: client}, nil
	case "vertexai", "vertex":
		project := cfg.Project
		if project == "" {
			project = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}
		if project == "" {
			return nil, fmt.Errorf("vertexai embedder requires a project")
		}
		return vertexai.NewEmbedder(project, cfg.Model, cfg.Location, cfg.Scopes, vertexai.WithBaseURL(cfg.BaseURL)), nil
	case "simple":
		return simple.New(cfg.Dim), nil
	default:
		return nil, fmt.Errorf("unsupported embedder: %v", cfg.Name)
	}
}
