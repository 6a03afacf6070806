// Package classifier decides whether text is emergency related and which taxonomy category it belongs to.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/taxonomy"
)

// Reason explains an Evaluate outcome.
type Reason string

const (
	ReasonTooShort      Reason = "too_short"
	ReasonIrrelevant    Reason = "irrelevant"
	ReasonUncategorized Reason = "uncategorized"
	ReasonAccepted      Reason = "accepted"
)

// Relevance is the outcome of a relevance check.
type Relevance struct {
	Relevant bool
	Score    float64
	// Lexical is the keyword density in percent.
	Lexical  float64
	Semantic float64
	// LexicalOnly is set when the embedding call failed and only keywords were used.
	LexicalOnly bool
}

// Classification is the outcome of a category match.
type Classification struct {
	Category   string
	Confidence float64
	Relevant   bool
}

// Verdict combines both checks for a chunk.
type Verdict struct {
	Relevance      Relevance
	Classification Classification
	Reason         Reason
}

// Accepted reports whether the chunk should be kept.
func (v Verdict) Accepted() bool { return v.Reason == ReasonAccepted }

// Classifier scores text against the emergency reference sentence and the category taxonomy.
// Category description vectors are embedded once by New.
type Classifier struct {
	embedder           embeddings.Embedder
	taxonomy           taxonomy.Taxonomy
	keywords           []string
	reference          string
	relevanceThreshold float64
	categoryThreshold  float64
	lexicalWeight      float64
	semanticWeight     float64
	minLength          int
	logf               func(format string, args ...any)

	categories [][]float32
	referenceV []float32
}

// New creates a classifier and embeds the category descriptions and the reference sentence once.
func New(ctx context.Context, embedder embeddings.Embedder, opts ...Option) (*Classifier, error) {
	if embedder == nil {
		return nil, fmt.Errorf("classifier: embedder was nil")
	}
	c := &Classifier{
		embedder:           embedder,
		taxonomy:           taxonomy.Default(),
		keywords:           taxonomy.RelevanceKeywords(),
		reference:          taxonomy.EmergencyReference,
		relevanceThreshold: DefaultRelevanceThreshold,
		categoryThreshold:  DefaultCategoryThreshold,
		lexicalWeight:      DefaultLexicalWeight,
		semanticWeight:     DefaultSemanticWeight,
		minLength:          DefaultMinLength,
		logf:               func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.taxonomy) == 0 {
		return nil, fmt.Errorf("classifier: empty taxonomy")
	}
	texts := append(c.taxonomy.Descriptions(), c.reference)
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("classifier: failed to embed category descriptions: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("classifier: got %d vectors for %d categories and the reference: %w", len(vectors), len(c.taxonomy), embeddings.ErrShape)
	}
	vectors = embeddings.NormalizeAll(vectors)
	c.categories = vectors[:len(c.taxonomy)]
	c.referenceV = vectors[len(c.taxonomy)]
	return c, nil
}

// Taxonomy returns the categories the classifier matches against.
func (c *Classifier) Taxonomy() taxonomy.Taxonomy { return c.taxonomy }

// RelevanceThreshold returns the configured relevance threshold.
func (c *Classifier) RelevanceThreshold() float64 { return c.relevanceThreshold }

// CategoryThreshold returns the configured category threshold.
func (c *Classifier) CategoryThreshold() float64 { return c.categoryThreshold }

// Weights returns the lexical and semantic blend weights.
func (c *Classifier) Weights() (lexical, semantic float64) { return c.lexicalWeight, c.semanticWeight }

// Relevance blends keyword density with similarity to the emergency reference sentence.
func (c *Classifier) Relevance(ctx context.Context, text string) Relevance {
	lexical, words := keywordDensity(text, c.keywords)
	if words == 0 {
		return Relevance{}
	}
	semantic, err := c.semantic(ctx, text)
	if err != nil {
		c.logf("classifier: relevance falling back to keywords: %v", err)
		return Relevance{
			Relevant:    lexical >= DefaultLexicalFallback,
			Score:       lexical / 100,
			Lexical:     lexical,
			LexicalOnly: true,
		}
	}
	score := c.lexicalWeight*(lexical/100) + c.semanticWeight*semantic
	return Relevance{
		Relevant: score >= c.relevanceThreshold,
		Score:    score,
		Lexical:  lexical,
		Semantic: semantic,
	}
}

func (c *Classifier) semantic(ctx context.Context, text string) (float64, error) {
	vectors, err := c.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return 0, err
	}
	if len(vectors) != 1 {
		return 0, fmt.Errorf("got %d vectors: %w", len(vectors), embeddings.ErrShape)
	}
	return float64(embeddings.Cosine(vectors[0], c.referenceV)), nil
}

// Classify returns the category whose description is most similar to text.
// The first taxonomy entry wins ties.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		c.logf("classifier: classification failed: %v", err)
		return Classification{Category: taxonomy.Unclassified}
	}
	embeddings.Normalize(vector)
	best, bestScore := -1, float32(0)
	for i, category := range c.categories {
		score := embeddings.Dot(vector, category)
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best == -1 {
		return Classification{Category: taxonomy.Unclassified}
	}
	confidence := float64(bestScore)
	return Classification{
		Category:   c.taxonomy[best].Key,
		Confidence: confidence,
		Relevant:   confidence >= c.categoryThreshold,
	}
}

// Evaluate runs the length, relevance and category checks in order, stopping at the first failure.
func (c *Classifier) Evaluate(ctx context.Context, text string) Verdict {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < c.minLength {
		return Verdict{Reason: ReasonTooShort}
	}
	verdict := Verdict{Relevance: c.Relevance(ctx, text)}
	if !verdict.Relevance.Relevant {
		verdict.Reason = ReasonIrrelevant
		return verdict
	}
	verdict.Classification = c.Classify(ctx, text)
	if !verdict.Classification.Relevant {
		verdict.Reason = ReasonUncategorized
		return verdict
	}
	verdict.Reason = ReasonAccepted
	return verdict
}

// Passes reports whether previously computed scores meet both thresholds.
func (c *Classifier) Passes(relevance, confidence float64) bool {
	return relevance >= c.relevanceThreshold && confidence >= c.categoryThreshold
}
