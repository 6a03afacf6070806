package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/viant/emergencykb/schema"
)

// Search returns the k documents most similar to query, best first; equal scores keep index
// order. k defaults to DefaultK and is capped by the index size. An empty index yields no
// results and no error.
func (s *Service) Search(ctx context.Context, query string, k int) (results []schema.Result, err error) {
	if k <= 0 {
		k = DefaultK
	}
	ctx, span := startSpan(ctx, "emergencykb.Search", attribute.Int("k", k))
	defer func() { endSpan(span, err) }()

	snapshot := s.snapshot.Load()
	if snapshot.Len() == 0 {
		return []schema.Result{}, nil
	}
	vector, err := s.queryEmbedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	hits, err := snapshot.Similar(vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	results = make([]schema.Result, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(snapshot.Documents) {
			if s.strict {
				return nil, fmt.Errorf("position %d, %d documents: %w", hit.Position, len(snapshot.Documents), ErrIndexOutOfSync)
			}
			s.logf("emergencykb: search skipped position %d, only %d documents", hit.Position, len(snapshot.Documents))
			continue
		}
		results = append(results, schema.Result{Document: snapshot.Documents[hit.Position], Score: hit.Score})
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}
