package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/taxonomy"
	"github.com/viant/emergencykb/vectordb/persist"
)

// Save persists the current index to the storage directory.
func (s *Service) Save(ctx context.Context) (manifest *persist.Manifest, err error) {
	ctx, span := startSpan(ctx, "emergencykb.Save", attribute.String("storage", s.store.BaseURL()))
	defer func() { endSpan(span, err) }()

	snapshot := s.snapshot.Load()
	if snapshot.Len() == 0 {
		return nil, ErrEmptyIndex
	}
	manifest, err = s.store.Save(ctx, snapshot, s.Model())
	if err != nil {
		return nil, fmt.Errorf("failed to save index to %v: %w", s.store.BaseURL(), err)
	}
	s.logf("emergencykb: saved %d documents to %v", manifest.NumDocuments, s.store.BaseURL())
	return manifest, nil
}

// Load replaces the current index with the persisted one. The current index is kept when the
// persisted files are missing (persist.ErrNotFound) or inconsistent (persist.ErrCorrupt).
func (s *Service) Load(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "emergencykb.Load", attribute.String("storage", s.store.BaseURL()))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, manifest, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if manifest != nil && manifest.ModelName != "" && manifest.ModelName != s.Model() {
		s.logf("emergencykb: index built with %v, querying with %v", manifest.ModelName, s.Model())
	}
	s.snapshot.Store(snapshot)
	s.logf("emergencykb: loaded %d documents from %v", snapshot.Len(), s.store.BaseURL())
	return nil
}

// Restore loads the persisted index when one is usable. A missing or corrupt index leaves the
// service as it was and reports false; other load errors are returned.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	exists, err := s.Exists(ctx)
	if err != nil || !exists {
		return false, err
	}
	err = s.Load(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, persist.ErrCorrupt) || errors.Is(err, persist.ErrNotFound) {
		s.logf("emergencykb: persisted index unusable, starting empty: %v", err)
		return false, nil
	}
	return false, err
}

// Exists reports whether a persisted index is present.
func (s *Service) Exists(ctx context.Context) (bool, error) {
	return s.store.Exists(ctx)
}

// Info returns the manifest of the persisted index.
func (s *Service) Info(ctx context.Context) (*persist.Manifest, error) {
	return s.store.Manifest(ctx)
}

// Status lists the eligible files of the source directory.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	files, exists, err := s.pipeline.Files(ctx)
	if err != nil {
		return nil, err
	}
	status := &Status{SourceDir: s.sourceURL, DirectoryExists: exists, FileCount: len(files), Files: make([]string, 0, len(files))}
	for _, f := range files {
		status.Files = append(status.Files, f.Name)
	}
	return status, nil
}

// Stats summarizes the documents of the current index.
func (s *Service) Stats() *Stats {
	snapshot := s.snapshot.Load()
	if snapshot == nil {
		return computeStats(nil, s.classifier.Taxonomy().DisplayName)
	}
	return computeStats(snapshot.Documents, s.classifier.Taxonomy().DisplayName)
}

func computeStats(docs []schema.Document, displayName func(key string) string) *Stats {
	stats := &Stats{
		TotalDocuments: len(docs),
		Categories:     map[string]CategoryCount{},
		Sources:        map[string]int{},
	}
	var relevance, confidence float64
	scored := 0
	for _, doc := range docs {
		category := stats.Categories[doc.Category]
		category.Name = displayName(doc.Category)
		category.Count++
		stats.Categories[doc.Category] = category
		stats.Sources[doc.Source]++
		if doc.Scores == nil {
			continue
		}
		scored++
		relevance += doc.Scores.Relevance
		confidence += doc.Scores.CategoryConfidence
	}
	if scored > 0 {
		stats.AverageRelevance = relevance / float64(scored)
		stats.AverageConfidence = confidence / float64(scored)
	}
	return stats
}

// Initialize loads the persisted index unless force is set or none exists; otherwise it builds
// from the source directory, falling back to the builtin documents when that build fails.
// A built index is saved.
func (s *Service) Initialize(ctx context.Context, force bool) (*InitResult, error) {
	if !force {
		loaded, err := s.Restore(ctx)
		if err != nil {
			return nil, err
		}
		if loaded {
			return &InitResult{Mode: InitLoaded}, nil
		}
	}
	result := &InitResult{Mode: InitBuilt}
	build, err := s.Build(ctx, &BuildRequest{Force: force})
	if err != nil {
		s.logf("emergencykb: build from %v failed, using builtin documents: %v", s.sourceURL, err)
		result.Mode = InitFallback
		if build, err = s.Build(ctx, &BuildRequest{Documents: taxonomy.Builtin()}); err != nil {
			return nil, err
		}
	}
	result.Build = build
	if _, err = s.Save(ctx); err != nil {
		return nil, err
	}
	return result, nil
}
