package embeddings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/embeddings/embeddingstest"
)

func TestWithTimeout_BlockingBackend(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	emb := embeddings.WithTimeout(&embeddingstest.Blocking{Release: release}, 20*time.Millisecond)

	start := time.Now()
	_, err := emb.EmbedQuery(context.Background(), "flood safety")
	require.Error(t, err)
	assert.True(t, errors.Is(err, embeddings.ErrTimeout))
	assert.True(t, embeddings.IsRetryable(err))
	assert.Less(t, time.Since(start), time.Second)

	_, err = emb.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.True(t, errors.Is(err, embeddings.ErrTimeout))
}

func TestWithTimeout_ParentCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	emb := embeddings.WithTimeout(&embeddingstest.Blocking{Release: release}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := emb.EmbedQuery(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, embeddings.IsRetryable(err))
}

func TestWithTimeout_PassThrough(t *testing.T) {
	concept := embeddingstest.NewConcept()
	emb := embeddings.WithTimeout(concept, time.Second)
	vecs, err := emb.EmbedDocuments(context.Background(), []string{"flood water", "earthquake"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, "concept-test", embeddings.ModelName(emb, "fallback"))

	_, err = embeddings.WithTimeout(embeddingstest.Failing{}, time.Second).EmbedQuery(context.Background(), "q")
	assert.ErrorIs(t, err, embeddingstest.ErrFailing)
	assert.False(t, embeddings.IsRetryable(err))
}

func TestWithTimeout_ShapeMismatch(t *testing.T) {
	emb := embeddings.WithTimeout(shortEmbedder{}, time.Second)
	_, err := emb.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, embeddings.ErrShape)
}

type shortEmbedder struct{}

func (shortEmbedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return [][]float32{{1}}, nil
}

func (shortEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1}, nil
}
