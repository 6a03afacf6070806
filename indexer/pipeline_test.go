package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs/url"

	"github.com/viant/emergencykb/classifier"
	"github.com/viant/emergencykb/embeddings/embeddingstest"
	"github.com/viant/emergencykb/indexer/fs"
	"github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/taxonomy"
)

const (
	earthquakeText = "During an earthquake, drop to the ground, take cover under a sturdy table and hold on until the shaking stops. Stay away from windows and heavy furniture that could collapse."
	floodText      = "Flood safety: evacuate to higher ground before rising water reaches your home. Never drive through a flooded road; turn around, don't drown."
	recipeText     = "Whisk eggs with sugar, then fold in flour and butter."
)

func newTestPipeline(t *testing.T, source string) *Pipeline {
	t.Helper()
	cls, err := classifier.New(context.Background(), embeddingstest.NewConcept())
	require.NoError(t, err)
	storage, err := fs.Normalize(t.TempDir())
	require.NoError(t, err)
	return NewPipeline(source, cls, WithLedger(NewLedger(url.Join(storage, LedgerFile), nil)))
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"earthquake.txt": earthquakeText,
		"flood.md":       floodText,
		"recipe.txt":     recipeText,
		"photo.png":      "not a document",
	})
	p := newTestPipeline(t, dir)

	docs, report, err := p.Run(ctx, false, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 3, report.Chunks)
	assert.Equal(t, 1, report.Irrelevant)
	assert.Equal(t, 2, report.Kept)
	assert.False(t, report.Fallback)

	quake := docs[0]
	assert.Equal(t, "earthquake", quake.Category)
	assert.Equal(t, "earthquake", quake.Source)
	assert.Equal(t, 0, quake.ChunkID)
	assert.Equal(t, earthquakeText, quake.Content)
	assert.Equal(t, "During an earthquake, drop to the ground, take cover under a sturdy table and hold on until the shak", quake.Title)
	assert.True(t, strings.HasSuffix(quake.FilePath, "/earthquake.txt"), quake.FilePath)
	assert.Equal(t, "flood", docs[1].Category)
	assert.Equal(t, "Flood safety: evacuate to higher ground before rising water reaches your home. Never drive through a", docs[1].Title)
	for _, doc := range docs {
		require.NotNil(t, doc.Scores)
		assert.GreaterOrEqual(t, doc.Scores.Relevance, classifier.DefaultRelevanceThreshold)
		assert.GreaterOrEqual(t, doc.Scores.CategoryConfidence, classifier.DefaultCategoryThreshold)
	}
	entries := p.Ledger().Entries()
	assert.Len(t, entries, 3)
	for path, entry := range entries {
		expect := 1
		if strings.HasSuffix(path, "/recipe.txt") {
			expect = 0
		}
		assert.Equal(t, expect, entry.Documents, path)
		assert.NotEmpty(t, entry.Digest, path)
	}
}

func TestPipeline_Run_Incremental(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"earthquake.txt": earthquakeText,
		"flood.txt":      floodText,
		"recipe.txt":     recipeText,
	})
	p := newTestPipeline(t, dir)
	first, _, err := p.Run(ctx, false, nil)
	require.NoError(t, err)

	second, report, err := p.Run(ctx, false, first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, report.Files, report.Skipped)
	assert.Equal(t, 0, report.Processed)

	forced, report, err := p.Run(ctx, true, first)
	require.NoError(t, err)
	assert.Equal(t, first, forced)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 3, report.Processed)

	cold, report, err := p.Run(ctx, false, nil)
	require.NoError(t, err)
	assert.Equal(t, first, cold, "unchanged files without prior documents are reprocessed")
	assert.Equal(t, 1, report.Skipped, "a file that produced nothing stays skipped")
	assert.Equal(t, 2, report.Processed)

	writeFiles(t, dir, map[string]string{"flood.txt": floodText + " Move valuables upstairs."})
	changed, report, err := p.Run(ctx, false, first)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Processed)
	require.Len(t, changed, 2)
	assert.Equal(t, first[0], changed[0])
	assert.Contains(t, changed[1].Content, "Move valuables upstairs")
}

func TestPipeline_Run_Fallback(t *testing.T) {
	ctx := context.Background()
	prior := []schema.Document{{Category: "flood", Title: "Old", Content: floodText, Source: "old", FilePath: "/gone/old.txt",
		Scores: &schema.Scores{Relevance: 0.5, CategoryConfidence: 0.9}}}

	testCases := []struct {
		description string
		files       map[string]string
		missing     bool
		prior       []schema.Document
		expectLen   int
		fallback    bool
		reused      bool
	}{
		{description: "empty directory", files: nil, expectLen: 11, fallback: true},
		{description: "missing directory", missing: true, expectLen: 11, fallback: true},
		{description: "missing directory ignores prior", missing: true, prior: prior, expectLen: 11, fallback: true},
		{description: "nothing relevant", files: map[string]string{"recipe.txt": recipeText}, expectLen: 11, fallback: true},
		{description: "nothing relevant keeps prior", files: map[string]string{"recipe.txt": recipeText}, prior: prior, expectLen: 1, reused: true},
	}
	for _, tc := range testCases {
		dir := t.TempDir()
		writeFiles(t, dir, tc.files)
		source := dir
		if tc.missing {
			source = filepath.Join(dir, "absent")
		}
		p := newTestPipeline(t, source)
		docs, report, err := p.Run(ctx, false, tc.prior)
		require.NoError(t, err, tc.description)
		assert.Len(t, docs, tc.expectLen, tc.description)
		assert.Equal(t, tc.fallback, report.Fallback, tc.description)
		assert.Equal(t, tc.reused, report.Reused, tc.description)
		if tc.fallback {
			assert.Equal(t, taxonomy.Builtin(), docs, tc.description)
		}
	}
}

func TestPipeline_Run_FileErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"blank.txt":      "   \n\n  ",
		"broken.pdf":     "this is not a pdf",
		"earthquake.txt": earthquakeText,
	})
	p := newTestPipeline(t, dir)
	docs, report, err := p.Run(ctx, false, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	require.Len(t, report.Failed, 2)
	kinds := map[string]ErrorKind{}
	for _, failure := range report.Failed {
		kinds[filepath.Base(failure.Path)] = failure.Kind
		assert.Error(t, failure)
	}
	assert.Equal(t, map[string]ErrorKind{"blank.txt": KindEmpty, "broken.pdf": KindExtract}, kinds)
	assert.Contains(t, report.String(), "failed=2")
}

func TestTitle(t *testing.T) {
	testCases := []struct {
		description string
		chunk       string
		expect      string
	}{
		{description: "first line", chunk: "Flood Safety Rules.\nMove to higher ground.", expect: "Flood Safety Rules"},
		{description: "several periods", chunk: "Wait...", expect: "Wait"},
		{description: "truncated", chunk: strings.Repeat("é", 120), expect: strings.Repeat("é", 100)},
		{description: "blank first line", chunk: "...\nbody", expect: "guide - Part 3"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expect, Title(tc.chunk, "guide", 2), tc.description)
	}
}
