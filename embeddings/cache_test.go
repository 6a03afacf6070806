package embeddings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/embeddings/embeddingstest"
)

func TestQueryCache_Eviction(t *testing.T) {
	cache := embeddings.NewQueryCache(2)
	cache.Add("a", []float32{1})
	cache.Add("b", []float32{2})
	_, ok := cache.Get("a")
	require.True(t, ok)
	cache.Add("c", []float32{3})

	_, ok = cache.Get("b")
	assert.False(t, ok, "least recently used entry evicted")
	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []float32{1}, v)
	assert.Equal(t, 2, cache.Len())

	var disabled *embeddings.QueryCache = embeddings.NewQueryCache(0)
	disabled.Add("a", []float32{1})
	_, ok = disabled.Get("a")
	assert.False(t, ok)
}

func TestWithQueryCache(t *testing.T) {
	concept := embeddingstest.NewConcept()
	emb := embeddings.WithQueryCache(concept, 8)
	ctx := context.Background()

	first, err := emb.EmbedQuery(ctx, "flood safety")
	require.NoError(t, err)
	first[0] = 99
	second, err := emb.EmbedQuery(ctx, "  flood safety ")
	require.NoError(t, err)
	assert.Equal(t, 1, concept.Calls())
	assert.NotEqual(t, float32(99), second[0], "cached vectors are copies")
}
