package classifier

import "github.com/viant/emergencykb/taxonomy"

// Defaults used when no option overrides them.
const (
	DefaultRelevanceThreshold = 0.20
	DefaultCategoryThreshold  = 0.30
	DefaultLexicalWeight      = 0.3
	DefaultSemanticWeight     = 0.7
	// DefaultLexicalFallback is the keyword density (percent) required when embeddings are unavailable.
	DefaultLexicalFallback = 1.0
	// DefaultMinLength is the minimum trimmed chunk length in characters.
	DefaultMinLength = 50
)

// Option configures a Classifier.
type Option func(c *Classifier)

// WithRelevanceThreshold sets the blended score a chunk needs to be relevant.
func WithRelevanceThreshold(v float64) Option {
	return func(c *Classifier) { c.relevanceThreshold = v }
}

// WithCategoryThreshold sets the confidence a category match needs.
func WithCategoryThreshold(v float64) Option {
	return func(c *Classifier) { c.categoryThreshold = v }
}

// WithWeights sets the lexical and semantic blend weights.
func WithWeights(lexical, semantic float64) Option {
	return func(c *Classifier) {
		c.lexicalWeight = lexical
		c.semanticWeight = semantic
	}
}

// WithMinLength sets the minimum chunk length checked by Evaluate.
func WithMinLength(n int) Option {
	return func(c *Classifier) { c.minLength = n }
}

// WithTaxonomy replaces the default taxonomy.
func WithTaxonomy(t taxonomy.Taxonomy) Option {
	return func(c *Classifier) { c.taxonomy = t }
}

// WithKeywords replaces the relevance keywords.
func WithKeywords(keywords []string) Option {
	return func(c *Classifier) { c.keywords = keywords }
}

// WithReference replaces the sentence chunks are compared against for relevance.
func WithReference(text string) Option {
	return func(c *Classifier) { c.reference = text }
}

// WithLogf sets the logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(c *Classifier) {
		if logf != nil {
			c.logf = logf
		}
	}
}
