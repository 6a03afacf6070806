package classifier

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/embeddings/embeddingstest"
	"github.com/viant/emergencykb/taxonomy"
)

const (
	earthquakeText = "During an earthquake, drop to the ground, take cover under a sturdy table and hold on until the shaking stops. Stay away from windows and heavy furniture that could collapse."
	recipeText     = "Whisk eggs with sugar, then fold in flour and butter."
	floodText      = "Flood safety: evacuate to higher ground before rising water reaches your home. Never drive through a flooded road; turn around, don't drown."
	budgetText     = "The quarterly budget meeting covers invoices, supplier contracts and office lease renewals for the next fiscal year."
)

// failAfter serves the first n calls from the wrapped embedder and fails afterwards.
type failAfter struct {
	embeddings.Embedder
	n     int64
	calls atomic.Int64
}

func (f *failAfter) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	if f.calls.Add(1) > f.n {
		return nil, embeddingstest.ErrFailing
	}
	return f.Embedder.EmbedDocuments(ctx, docs)
}

func (f *failAfter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.calls.Add(1) > f.n {
		return nil, embeddingstest.ErrFailing
	}
	return f.Embedder.EmbedQuery(ctx, text)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	embedder := embeddingstest.NewConcept()
	c, err := New(ctx, embedder)
	require.NoError(t, err)
	assert.Len(t, c.categories, len(taxonomy.Default()))
	assert.Equal(t, 1, embedder.Calls())
	assert.Equal(t, len(taxonomy.Default())+1, embedder.Texts())
	assert.NotEmpty(t, c.referenceV)

	c.Relevance(ctx, earthquakeText)
	c.Relevance(ctx, floodText)
	assert.Equal(t, 3, embedder.Calls())
	assert.Equal(t, len(taxonomy.Default())+3, embedder.Texts(), "the reference sentence is embedded once")

	_, err = New(ctx, embeddingstest.Failing{})
	assert.ErrorIs(t, err, embeddingstest.ErrFailing)

	_, err = New(ctx, embedder, WithTaxonomy(taxonomy.Taxonomy{}))
	assert.Error(t, err)
}

func TestClassifier_Relevance(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, embeddingstest.NewConcept())
	require.NoError(t, err)

	testCases := []struct {
		description string
		text        string
		relevant    bool
	}{
		{description: "earthquake guidance", text: earthquakeText, relevant: true},
		{description: "flood guidance", text: floodText, relevant: true},
		{description: "recipe", text: recipeText, relevant: false},
		{description: "office memo", text: budgetText, relevant: false},
		{description: "whitespace only", text: " \n\t ", relevant: false},
	}
	for _, tc := range testCases {
		actual := c.Relevance(ctx, tc.text)
		assert.Equal(t, tc.relevant, actual.Relevant, tc.description)
		assert.False(t, actual.LexicalOnly, tc.description)
		if tc.relevant {
			assert.GreaterOrEqual(t, actual.Score, DefaultRelevanceThreshold, tc.description)
		}
	}
	empty := c.Relevance(ctx, "")
	assert.Equal(t, Relevance{}, empty)
}

func TestClassifier_Relevance_LexicalFallback(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, &failAfter{Embedder: embeddingstest.NewConcept(), n: 1})
	require.NoError(t, err)

	actual := c.Relevance(ctx, earthquakeText)
	assert.True(t, actual.LexicalOnly)
	assert.True(t, actual.Relevant)
	assert.InDelta(t, actual.Lexical/100, actual.Score, 1e-9)

	actual = c.Relevance(ctx, recipeText)
	assert.True(t, actual.LexicalOnly)
	assert.False(t, actual.Relevant)
	assert.Equal(t, 0.0, actual.Score)
}

func TestClassifier_Classify(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, embeddingstest.NewConcept())
	require.NoError(t, err)

	testCases := []struct {
		description string
		text        string
		category    string
		relevant    bool
	}{
		{description: "earthquake", text: earthquakeText, category: "earthquake", relevant: true},
		{description: "flood", text: floodText, category: "flood", relevant: true},
		{description: "recipe has no strong match", text: recipeText, relevant: false},
	}
	for _, tc := range testCases {
		actual := c.Classify(ctx, tc.text)
		assert.Equal(t, tc.relevant, actual.Relevant, tc.description)
		if tc.category != "" {
			assert.Equal(t, tc.category, actual.Category, tc.description)
			assert.GreaterOrEqual(t, actual.Confidence, DefaultCategoryThreshold, tc.description)
		}
	}
}

func TestClassifier_Classify_Failure(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, &failAfter{Embedder: embeddingstest.NewConcept(), n: 1})
	require.NoError(t, err)
	assert.Equal(t, Classification{Category: taxonomy.Unclassified}, c.Classify(ctx, earthquakeText))
}

func TestClassifier_Classify_TieGoesToFirstCategory(t *testing.T) {
	ctx := context.Background()
	tax := taxonomy.Taxonomy{
		{Key: "first", Description: "first description"},
		{Key: "second", Description: "second description"},
	}
	embedder := &embeddingstest.Static{
		Vectors: map[string][]float32{
			"first description":  {1, 1},
			"second description": {1, 1},
		},
		Default: []float32{1, 1},
	}
	for _, order := range []taxonomy.Taxonomy{tax, {tax[1], tax[0]}} {
		c, err := New(ctx, embedder, WithTaxonomy(order))
		require.NoError(t, err)
		actual := c.Classify(ctx, "anything")
		assert.Equal(t, order[0].Key, actual.Category)
		assert.InDelta(t, 1.0, actual.Confidence, 1e-6)
	}
}

func TestClassifier_Evaluate(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, embeddingstest.NewConcept())
	require.NoError(t, err)

	offTopic := "unrelated text about nothing in particular that is long enough to pass the length gate"
	staticText := strings.TrimSpace(strings.Repeat("relevant but uncategorized ", 3))
	static := &embeddingstest.Static{
		Vectors: map[string][]float32{
			"a":        {1, 0, 0},
			"b":        {0, 1, 0},
			"ref":      {0.1, 0.1, 1},
			staticText: {0.1, 0.1, 1},
		},
		Default: []float32{0, 0, 0},
	}
	uncategorized, err := New(ctx, static,
		WithTaxonomy(taxonomy.Taxonomy{{Key: "a", Description: "a"}, {Key: "b", Description: "b"}}),
		WithReference("ref"))
	require.NoError(t, err)

	testCases := []struct {
		description string
		classifier  *Classifier
		text        string
		reason      Reason
		category    string
	}{
		{description: "accepted", classifier: c, text: earthquakeText, reason: ReasonAccepted, category: "earthquake"},
		{description: "too short", classifier: c, text: "Earthquake: drop, cover, hold.", reason: ReasonTooShort},
		{description: "recipe just over the length gate", classifier: c, text: recipeText, reason: ReasonIrrelevant},
		{description: "off topic", classifier: c, text: offTopic, reason: ReasonIrrelevant},
		{description: "no category", classifier: uncategorized, text: staticText, reason: ReasonUncategorized},
	}
	for _, tc := range testCases {
		actual := tc.classifier.Evaluate(ctx, tc.text)
		assert.Equal(t, tc.reason, actual.Reason, tc.description)
		assert.Equal(t, tc.reason == ReasonAccepted, actual.Accepted(), tc.description)
		if tc.category != "" {
			assert.Equal(t, tc.category, actual.Classification.Category, tc.description)
		}
	}
}

func TestClassifier_Options(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, embeddingstest.NewConcept(),
		WithRelevanceThreshold(0.9),
		WithCategoryThreshold(0.99),
		WithWeights(1, 0),
		WithMinLength(10),
		WithKeywords([]string{"earthquake"}))
	require.NoError(t, err)
	assert.Equal(t, 0.9, c.RelevanceThreshold())
	assert.Equal(t, 0.99, c.CategoryThreshold())
	assert.False(t, c.Relevance(ctx, earthquakeText).Relevant)
	assert.True(t, c.Passes(0.95, 0.995))
	assert.False(t, c.Passes(0.95, 0.5))
}

func TestKeywordDensity(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		expect      float64
		words       int
	}{
		{description: "empty", text: "", expect: 0, words: 0},
		{description: "single keyword", text: "Flood warning now", expect: 2.0 / 3 * 100, words: 3},
		{description: "multi-word keyword counted once", text: "first aid kit ready", expect: 1.0 / 4 * 100, words: 4},
		{description: "substring match", text: "Earthquakes happen", expect: 1.0 / 2 * 100, words: 2},
	}
	for _, tc := range testCases {
		actual, words := keywordDensity(tc.text, taxonomy.RelevanceKeywords())
		assert.InDelta(t, tc.expect, actual, 1e-9, tc.description)
		assert.Equal(t, tc.words, words, tc.description)
	}
}
