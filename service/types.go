package service

import (
	"github.com/viant/emergencykb/indexer"
	"github.com/viant/emergencykb/schema"
)

// DefaultK is the number of search results returned when k is not positive.
const DefaultK = 3

// BuildRequest defines inputs for a full build.
type BuildRequest struct {
	// Documents, when nil, are ingested from the source directory.
	Documents []schema.Document
	// Force reprocesses source files whose content has not changed.
	Force bool
}

// BuildResult summarizes a successful build.
type BuildResult struct {
	Documents int
	// Dropped counts candidates that failed re-validation.
	Dropped   int
	Dimension int
	// Report is set when documents were ingested from the source directory.
	Report *indexer.Report
}

// InitMode tells how Initialize obtained the index.
type InitMode string

const (
	InitLoaded   InitMode = "loaded"
	InitBuilt    InitMode = "built"
	InitFallback InitMode = "fallback"
)

// InitResult describes an Initialize outcome.
type InitResult struct {
	Mode  InitMode
	Build *BuildResult
}

// Status describes the source directory.
type Status struct {
	SourceDir       string   `json:"source_dir"`
	FileCount       int      `json:"file_count"`
	Files           []string `json:"files"`
	DirectoryExists bool     `json:"directory_exists"`
}

// CategoryCount is the number of documents in a category.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes the in-memory index.
type Stats struct {
	TotalDocuments    int                      `json:"total_documents"`
	Categories        map[string]CategoryCount `json:"categories"`
	Sources           map[string]int           `json:"sources"`
	AverageRelevance  float64                  `json:"avg_relevance_score"`
	AverageConfidence float64                  `json:"avg_category_confidence"`
}
