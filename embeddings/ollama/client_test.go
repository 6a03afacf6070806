package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/emergencykb/embeddings"
)

func TestEmbedder_EmbedDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, embedEndpoint, r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		out := embedResponse{}
		for range req.Input {
			out.Embeddings = append(out.Embeddings, []float32{0.1, 0.2, 0.3})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	emb := NewEmbedder("", server.URL)
	vecs, err := emb.EmbedDocuments(context.Background(), []string{"flood safety", "earthquake"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, "ollama/all-minilm", emb.Model())

	vec, err := emb.EmbedQuery(context.Background(), "tornado")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestEmbedder_TransientFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewEmbedder("all-minilm", server.URL).EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, embeddings.IsRetryable(err))
}

func TestEmbedder_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewEmbedder("missing", server.URL).EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.False(t, embeddings.IsRetryable(err))
}
