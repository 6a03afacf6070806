package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs/storage"

	"github.com/viant/emergencykb/classifier"
	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/embeddings/embeddingstest"
	"github.com/viant/emergencykb/indexer"
	"github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/taxonomy"
	"github.com/viant/emergencykb/vectordb"
	"github.com/viant/emergencykb/vectordb/persist"
)

const (
	earthquakeText = "During an earthquake, drop to the ground, take cover under a sturdy table and hold on until the shaking stops. Stay away from windows and heavy furniture that could collapse."
	floodText      = "Flood safety: evacuate to higher ground before rising water reaches your home. Never drive through a flooded road; turn around, don't drown."
	recipeText     = "Whisk eggs with sugar, then fold in flour and butter. Bake the cake for forty minutes until golden."
)

func newTestService(t *testing.T, source, storage string, opts ...Option) *Service {
	t.Helper()
	if source == "" {
		source = t.TempDir()
	}
	if storage == "" {
		storage = t.TempDir()
	}
	base := []Option{WithEmbedder(embeddingstest.NewConcept()), WithSourceURL(source), WithStorageURL(storage)}
	svc, err := New(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func buildBuiltin(t *testing.T, svc *Service) {
	t.Helper()
	_, err := svc.Build(context.Background(), &BuildRequest{Documents: taxonomy.Builtin()})
	require.NoError(t, err)
	require.Equal(t, 11, svc.Len())
}

func TestNew(t *testing.T) {
	_, err := New(context.Background())
	assert.Error(t, err)

	_, err = New(context.Background(), WithEmbedder(embeddingstest.Failing{}))
	assert.ErrorIs(t, err, embeddingstest.ErrFailing)

	_, err = New(context.Background(), WithEmbedder(&embeddingstest.Blocking{Delay: time.Second}), WithTimeout(20*time.Millisecond))
	assert.ErrorIs(t, err, embeddings.ErrTimeout)
	assert.True(t, embeddings.IsRetryable(err))
}

func TestService_Build_Fallback(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")

	result, err := svc.Build(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Fallback)
	assert.Equal(t, 11, result.Documents)
	assert.Equal(t, 0, result.Dropped)
	assert.Equal(t, embeddingstest.NewConcept().Dim(), result.Dimension)

	stats := svc.Stats()
	assert.Equal(t, 11, stats.TotalDocuments)
	assert.Equal(t, map[string]int{schema.SourceBuiltin: 11}, stats.Sources)
	assert.Equal(t, CategoryCount{Name: "Earthquake Safety", Count: 2}, stats.Categories["earthquake"])
	assert.Equal(t, CategoryCount{Name: "Sri Lanka Emergency Response", Count: 2}, stats.Categories["region_specific"])
	assert.Equal(t, 0.0, stats.AverageRelevance)
}

func TestService_Build_FromSource(t *testing.T) {
	ctx := context.Background()
	source := t.TempDir()
	writeFiles(t, source, map[string]string{
		"earthquake.txt": earthquakeText,
		"flood.md":       floodText,
		"recipe.txt":     recipeText,
	})
	svc := newTestService(t, source, "")

	first, err := svc.Build(ctx, &BuildRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Documents)
	assert.Equal(t, 3, first.Report.Processed)
	for _, doc := range svc.snapshot.Load().Documents {
		require.NotNil(t, doc.Scores)
		assert.GreaterOrEqual(t, doc.Scores.Relevance, classifier.DefaultRelevanceThreshold)
		assert.GreaterOrEqual(t, doc.Scores.CategoryConfidence, classifier.DefaultCategoryThreshold)
	}
	before := svc.snapshot.Load().Documents

	second, err := svc.Build(ctx, &BuildRequest{})
	require.NoError(t, err)
	assert.Equal(t, second.Report.Files, second.Report.Skipped)
	assert.Equal(t, 0, second.Report.Processed)
	assert.Equal(t, before, svc.snapshot.Load().Documents)

	forced, err := svc.Build(ctx, &BuildRequest{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 0, forced.Report.Skipped)
	assert.Equal(t, before, svc.snapshot.Load().Documents)

	results, err := svc.Search(ctx, "earthquake shaking", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "earthquake", results[0].Document.Category)
	assert.Equal(t, "earthquake", results[0].Document.Source)
}

func TestService_Build_Failure(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")
	buildBuiltin(t, svc)
	before := svc.snapshot.Load()

	_, err := svc.Build(ctx, &BuildRequest{Documents: []schema.Document{}})
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = svc.Build(ctx, &BuildRequest{Documents: []schema.Document{{Title: "Cake", Content: recipeText, Source: "cookbook"}}})
	assert.ErrorIs(t, err, ErrNoRelevantDocuments)

	lowScores := schema.Document{Title: "Cake", Content: recipeText, Source: "cookbook", Scores: &schema.Scores{Relevance: 0.1, CategoryConfidence: 0.9}}
	_, err = svc.Build(ctx, &BuildRequest{Documents: []schema.Document{lowScores}})
	assert.ErrorIs(t, err, ErrNoRelevantDocuments)

	svc.documentEmbedder = embeddingstest.Failing{}
	_, err = svc.Build(ctx, &BuildRequest{Documents: taxonomy.Builtin()})
	assert.ErrorIs(t, err, embeddingstest.ErrFailing)

	assert.Same(t, before, svc.snapshot.Load())
}

func TestService_Build_Revalidates(t *testing.T) {
	svc := newTestService(t, "", "")
	docs := []schema.Document{
		{Title: "Quake", Content: earthquakeText, Source: "manual", Category: "flood"},
		{Title: "Cake", Content: recipeText, Source: "manual"},
	}
	result, err := svc.Build(context.Background(), &BuildRequest{Documents: docs})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Documents)
	assert.Equal(t, 1, result.Dropped)
	kept := svc.snapshot.Load().Documents[0]
	assert.Equal(t, "earthquake", kept.Category)
	require.NotNil(t, kept.Scores)
	assert.GreaterOrEqual(t, kept.Scores.CategoryConfidence, classifier.DefaultCategoryThreshold)
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")
	buildBuiltin(t, svc)

	var testCases = []struct {
		description string
		query       string
		k           int
		expectLen   int
		expectTop   string
	}{
		{description: "earthquake", query: "what to do during earthquake", k: 2, expectLen: 2, expectTop: "During Earthquake Safety"},
		{description: "hurricane", query: "hurricane evacuation", k: 2, expectLen: 2, expectTop: "Hurricane Evacuation"},
		{description: "bleeding", query: "first aid bleeding", k: 2, expectLen: 2, expectTop: "Severe Bleeding Control"},
		{description: "default k", query: "what to do during earthquake", k: 0, expectLen: DefaultK, expectTop: "During Earthquake Safety"},
		{description: "k capped", query: "what to do during earthquake", k: 50, expectLen: 11, expectTop: "During Earthquake Safety"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			results, err := svc.Search(ctx, tc.query, tc.k)
			require.NoError(t, err)
			require.Len(t, results, tc.expectLen)
			assert.Equal(t, tc.expectTop, results[0].Document.Title)
			for i := 1; i < len(results); i++ {
				assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
			}
		})
	}
}

func TestService_Search_Empty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")
	results, err := svc.Search(ctx, "flood safety", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
	assert.Equal(t, 0, svc.Stats().TotalDocuments)

	_, err = svc.Save(ctx)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestService_Search_OutOfSync(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")
	buildBuiltin(t, svc)
	full := svc.snapshot.Load()
	svc.snapshot.Store(&vectordb.Snapshot{Documents: full.Documents[:5], Embeddings: full.Embeddings, Index: full.Index})

	results, err := svc.Search(ctx, "what to do during earthquake", 11)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	svc.strict = true
	_, err = svc.Search(ctx, "what to do during earthquake", 11)
	assert.ErrorIs(t, err, ErrIndexOutOfSync)
}

func TestService_AddIncremental(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")
	buildBuiltin(t, svc)

	added, err := svc.AddIncremental(ctx, []schema.Document{
		{Title: "Quake drill", Content: earthquakeText, Source: "drill", FilePath: "drill.txt"},
		{Title: "Cake", Content: recipeText, Source: "cookbook"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 12, svc.Len())
	require.NoError(t, svc.snapshot.Load().Validate())

	last := svc.snapshot.Load().Documents[11]
	assert.Equal(t, "earthquake", last.Category)
	require.NotNil(t, last.Scores)

	results, err := svc.Search(ctx, earthquakeText, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Quake drill", results[0].Document.Title)

	before := svc.snapshot.Load()
	_, err = svc.AddIncremental(ctx, []schema.Document{{Title: "Cake", Content: recipeText}})
	assert.ErrorIs(t, err, ErrNoRelevantDocuments)
	_, err = svc.AddIncremental(ctx, nil)
	assert.ErrorIs(t, err, ErrNoRelevantDocuments)

	svc.documentEmbedder = &embeddingstest.Static{Default: []float32{1, 0}}
	_, err = svc.AddIncremental(ctx, []schema.Document{{Title: "Quake", Content: earthquakeText}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Same(t, before, svc.snapshot.Load())
}

func TestService_AddIncremental_EmptyIndex(t *testing.T) {
	svc := newTestService(t, "", "")
	added, err := svc.AddIncremental(context.Background(), []schema.Document{{Title: "Flood", Content: floodText}})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, svc.Len())
}

func TestService_SaveLoad(t *testing.T) {
	ctx := context.Background()
	storageDir := t.TempDir()
	svc := newTestService(t, "", storageDir)

	exists, err := svc.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	buildBuiltin(t, svc)
	manifest, err := svc.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, manifest.NumDocuments)
	assert.Equal(t, "concept-test", manifest.ModelName)

	exists, err = svc.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded := newTestService(t, "", storageDir)
	require.NoError(t, loaded.Load(ctx))
	assert.Equal(t, svc.Stats(), loaded.Stats())
	assert.Equal(t, svc.snapshot.Load().Documents, loaded.snapshot.Load().Documents)

	for _, query := range []string{"what to do during earthquake", "flood safety", "first aid bleeding"} {
		expect, err := svc.Search(ctx, query, 3)
		require.NoError(t, err)
		actual, err := loaded.Search(ctx, query, 3)
		require.NoError(t, err)
		assert.Equal(t, expect, actual, query)
	}

	info, err := loaded.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, manifest.BuildID, info.BuildID)
	assert.Equal(t, map[string]int{schema.SourceBuiltin: 11}, info.SourceBreakdown)
}

func TestService_Load_Missing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")
	buildBuiltin(t, svc)
	before := svc.snapshot.Load()

	err := svc.Load(ctx)
	assert.ErrorIs(t, err, persist.ErrNotFound)
	assert.Same(t, before, svc.snapshot.Load())

	_, err = svc.Info(ctx)
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

func TestService_Status(t *testing.T) {
	ctx := context.Background()
	source := t.TempDir()
	writeFiles(t, source, map[string]string{
		"flood.md":       floodText,
		"earthquake.txt": earthquakeText,
		"photo.png":      "binary",
	})

	var testCases = []struct {
		description string
		source      string
		expect      *Status
	}{
		{description: "existing", source: source, expect: &Status{SourceDir: source, FileCount: 2, Files: []string{"earthquake.txt", "flood.md"}, DirectoryExists: true}},
		{description: "missing", source: filepath.Join(source, "missing"), expect: &Status{SourceDir: filepath.Join(source, "missing"), Files: []string{}}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			svc := newTestService(t, tc.source, "")
			status, err := svc.Status(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, status)
		})
	}
}

type brokenFS struct{}

func (brokenFS) List(ctx context.Context, location string) ([]storage.Object, error) {
	return nil, errors.New("listing disabled")
}

func (brokenFS) Download(ctx context.Context, object storage.Object) ([]byte, error) {
	return nil, errors.New("download disabled")
}

func (brokenFS) Exists(ctx context.Context, location string) (bool, error) {
	return false, errors.New("source unavailable")
}

func TestService_Restore(t *testing.T) {
	ctx := context.Background()
	source := t.TempDir()
	writeFiles(t, source, map[string]string{
		"earthquake.txt": earthquakeText,
		"flood.md":       floodText,
		"recipe.txt":     recipeText,
	})

	t.Run("unchanged files skipped across services", func(t *testing.T) {
		storageDir := t.TempDir()
		first := newTestService(t, source, storageDir)
		built, err := first.Build(ctx, &BuildRequest{})
		require.NoError(t, err)
		assert.Equal(t, 3, built.Report.Processed)
		_, err = first.Save(ctx)
		require.NoError(t, err)

		second := newTestService(t, source, storageDir)
		restored, err := second.Restore(ctx)
		require.NoError(t, err)
		assert.True(t, restored)
		rebuilt, err := second.Build(ctx, &BuildRequest{})
		require.NoError(t, err)
		assert.Equal(t, 3, rebuilt.Report.Skipped)
		assert.Equal(t, 0, rebuilt.Report.Processed)
		assert.Equal(t, first.snapshot.Load().Documents, second.snapshot.Load().Documents)
	})

	t.Run("nothing saved", func(t *testing.T) {
		svc := newTestService(t, source, "")
		restored, err := svc.Restore(ctx)
		require.NoError(t, err)
		assert.False(t, restored)
		assert.Equal(t, 0, svc.Len())
	})

	t.Run("corrupt index starts empty", func(t *testing.T) {
		storageDir := t.TempDir()
		svc := newTestService(t, source, storageDir)
		buildBuiltin(t, svc)
		_, err := svc.Save(ctx)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(storageDir, persist.EmbeddingsFile), []byte("garbage"), 0o644))

		other := newTestService(t, source, storageDir)
		restored, err := other.Restore(ctx)
		require.NoError(t, err)
		assert.False(t, restored)
		assert.Equal(t, 0, other.Len())
	})
}

func TestService_EarthquakeGuidance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "", "")
	builtin := taxonomy.Builtin()
	quake, flood := builtin[0], builtin[2]
	require.Equal(t, "During Earthquake Safety", quake.Title)
	require.Equal(t, "flood", flood.Category)

	classification := svc.Classifier().Classify(ctx, quake.Content)
	assert.Equal(t, "earthquake", classification.Category)
	assert.GreaterOrEqual(t, classification.Confidence, 0.30)

	_, err := svc.Build(ctx, &BuildRequest{Documents: []schema.Document{quake, flood}})
	require.NoError(t, err)
	results, err := svc.Search(ctx, "what to do during earthquake", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "During Earthquake Safety", results[0].Document.Title)
	assert.Equal(t, "earthquake", results[0].Document.Category)
}

func TestService_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("build then load", func(t *testing.T) {
		storageDir := t.TempDir()
		svc := newTestService(t, "", storageDir)
		result, err := svc.Initialize(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, InitBuilt, result.Mode)
		assert.Equal(t, 11, result.Build.Documents)

		again := newTestService(t, "", storageDir)
		result, err = again.Initialize(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, InitLoaded, result.Mode)
		assert.Equal(t, 11, again.Len())

		result, err = again.Initialize(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, InitBuilt, result.Mode)
	})

	t.Run("fallback", func(t *testing.T) {
		svc := newTestService(t, "", "", WithIndexerOptions(indexer.WithFS(brokenFS{})))
		result, err := svc.Initialize(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, InitFallback, result.Mode)
		assert.Equal(t, 11, svc.Len())
		exists, err := svc.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
