package service

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/vectordb"
)

// Build replaces the index. Without request documents the source directory is ingested, reusing
// documents of unchanged files from the current index. The current index is kept on any failure.
func (s *Service) Build(ctx context.Context, request *BuildRequest) (result *BuildResult, err error) {
	if request == nil {
		request = &BuildRequest{}
	}
	ctx, span := startSpan(ctx, "emergencykb.Build", attribute.Bool("force", request.Force))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	result = &BuildResult{}
	candidates := request.Documents
	if candidates == nil {
		var prior []schema.Document
		if current := s.snapshot.Load(); current != nil {
			prior = current.Documents
		}
		docs, report, err := s.pipeline.Run(ctx, request.Force, prior)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest %v: %w", s.sourceURL, err)
		}
		s.logf("emergencykb: ingest %v", report)
		result.Report = report
		candidates = docs
	}
	if len(candidates) == 0 {
		return nil, ErrNoDocuments
	}

	kept := s.validate(ctx, candidates)
	result.Dropped = len(candidates) - len(kept)
	if len(kept) == 0 {
		return nil, ErrNoRelevantDocuments
	}
	vectors, err := s.embedDocuments(ctx, kept)
	if err != nil {
		return nil, err
	}
	snapshot, err := vectordb.NewSnapshot(kept, vectors)
	if err != nil {
		return nil, err
	}
	s.snapshot.Store(snapshot)
	result.Documents = snapshot.Len()
	result.Dimension = snapshot.Dim()
	span.SetAttributes(attribute.Int("documents", result.Documents), attribute.Int("dropped", result.Dropped))
	s.logf("emergencykb: build indexed=%d dropped=%d dim=%d", result.Documents, result.Dropped, result.Dimension)
	s.logDistribution(snapshot.Documents)
	return result, nil
}

// validate keeps builtin documents and documents whose scores meet the thresholds; the rest are
// classified again and kept with fresh scores when accepted.
func (s *Service) validate(ctx context.Context, candidates []schema.Document) []schema.Document {
	kept := make([]schema.Document, 0, len(candidates))
	for _, doc := range candidates {
		if doc.IsBuiltin() {
			kept = append(kept, doc)
			continue
		}
		if doc.Scores != nil && s.classifier.Passes(doc.Scores.Relevance, doc.Scores.CategoryConfidence) {
			kept = append(kept, doc)
			continue
		}
		if accepted, ok := s.accept(ctx, doc); ok {
			kept = append(kept, accepted)
		}
	}
	return kept
}

// accept classifies doc and returns it with the resulting category and scores.
func (s *Service) accept(ctx context.Context, doc schema.Document) (schema.Document, bool) {
	verdict := s.classifier.Evaluate(ctx, doc.Content)
	if !verdict.Accepted() {
		s.logf("emergencykb: dropped %q: %v", doc.Title, verdict.Reason)
		return doc, false
	}
	doc.Category = verdict.Classification.Category
	doc.Scores = &schema.Scores{
		Relevance:          verdict.Relevance.Score,
		CategoryConfidence: verdict.Classification.Confidence,
	}
	return doc, true
}

// AddIncremental classifies docs and appends the accepted ones to the index without re-embedding
// existing documents. It returns the number of documents added.
func (s *Service) AddIncremental(ctx context.Context, docs []schema.Document) (added int, err error) {
	ctx, span := startSpan(ctx, "emergencykb.AddIncremental", attribute.Int("candidates", len(docs)))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []schema.Document
	for _, doc := range docs {
		if accepted, ok := s.accept(ctx, doc); ok {
			kept = append(kept, accepted)
		}
	}
	if len(kept) == 0 {
		return 0, ErrNoRelevantDocuments
	}
	vectors, err := s.embedDocuments(ctx, kept)
	if err != nil {
		return 0, err
	}
	current := s.snapshot.Load()
	if current.Len() > 0 && len(vectors[0]) != current.Dim() {
		return 0, fmt.Errorf("embedding dimension %d, index dimension %d: %w", len(vectors[0]), current.Dim(), ErrDimensionMismatch)
	}
	next, err := current.Append(kept, vectors)
	if err != nil {
		return 0, err
	}
	s.snapshot.Store(next)
	s.logf("emergencykb: added %d of %d documents, total=%d", len(kept), len(docs), next.Len())
	s.logDistribution(next.Documents)
	return len(kept), nil
}

// embedDocuments embeds document contents in one batch and normalizes the rows.
func (s *Service) embedDocuments(ctx context.Context, docs []schema.Document) ([][]float32, error) {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	vectors, err := s.documentEmbedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d documents: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d documents: %w", len(vectors), len(texts), embeddings.ErrShape)
	}
	dim := len(vectors[0])
	for i, vector := range vectors {
		if len(vector) == 0 || len(vector) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d: %w", i, len(vector), dim, ErrDimensionMismatch)
		}
	}
	return embeddings.NormalizeAll(vectors), nil
}

func (s *Service) logDistribution(docs []schema.Document) {
	stats := computeStats(docs, s.classifier.Taxonomy().DisplayName)
	keys := make([]string, 0, len(stats.Categories))
	for key := range stats.Categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.logf("emergencykb: category %v: %d documents", stats.Categories[key].Name, stats.Categories[key].Count)
	}
	if stats.AverageRelevance > 0 {
		s.logf("emergencykb: average relevance %.3f, average category confidence %.3f", stats.AverageRelevance, stats.AverageConfidence)
	}
}
