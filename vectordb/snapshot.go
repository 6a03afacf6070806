// Package vectordb holds the in-memory similarity index and the document snapshot it serves.
package vectordb

import (
	"fmt"

	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/schema"
)

// Snapshot is an immutable view of documents, their embeddings and the index built over them.
// Row i of Embeddings and position i of Index belong to Documents[i].
type Snapshot struct {
	Documents  []schema.Document
	Embeddings [][]float32
	Index      *Index
}

// NewSnapshot builds an index over normalized vectors and returns the snapshot.
func NewSnapshot(documents []schema.Document, vectors [][]float32) (*Snapshot, error) {
	if len(documents) != len(vectors) {
		return nil, fmt.Errorf("%d documents, %d vectors: %w", len(documents), len(vectors), ErrParity)
	}
	index := NewIndex(0)
	if err := index.Add(vectors...); err != nil {
		return nil, err
	}
	return &Snapshot{Documents: documents, Embeddings: vectors, Index: index}, nil
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Documents)
}

// Dim returns the embedding dimension.
func (s *Snapshot) Dim() int {
	if s == nil || s.Index == nil {
		return 0
	}
	return s.Index.Dim()
}

// Validate checks that documents, embeddings and index agree.
func (s *Snapshot) Validate() error {
	if s.Index == nil {
		return fmt.Errorf("missing index: %w", ErrParity)
	}
	if len(s.Documents) != len(s.Embeddings) || len(s.Documents) != s.Index.Len() {
		return fmt.Errorf("documents=%d embeddings=%d index=%d: %w", len(s.Documents), len(s.Embeddings), s.Index.Len(), ErrParity)
	}
	for i, row := range s.Embeddings {
		if len(row) != s.Index.Dim() {
			return fmt.Errorf("embedding %d has dimension %d, index has %d: %w", i, len(row), s.Index.Dim(), ErrDimensionMismatch)
		}
	}
	return nil
}

// Append returns a new snapshot with documents and vectors added; s is left unchanged.
func (s *Snapshot) Append(documents []schema.Document, vectors [][]float32) (*Snapshot, error) {
	if s == nil || s.Len() == 0 {
		return NewSnapshot(documents, vectors)
	}
	if len(documents) != len(vectors) {
		return nil, fmt.Errorf("%d documents, %d vectors: %w", len(documents), len(vectors), ErrParity)
	}
	index := s.Index.Clone()
	if err := index.Add(vectors...); err != nil {
		return nil, err
	}
	docs := make([]schema.Document, 0, len(s.Documents)+len(documents))
	docs = append(append(docs, s.Documents...), documents...)
	rows := make([][]float32, 0, len(s.Embeddings)+len(vectors))
	rows = append(append(rows, s.Embeddings...), vectors...)
	return &Snapshot{Documents: docs, Embeddings: rows, Index: index}, nil
}

// SourceBreakdown counts documents per source.
func (s *Snapshot) SourceBreakdown() map[string]int {
	out := map[string]int{}
	if s == nil {
		return out
	}
	for _, doc := range s.Documents {
		out[doc.Source]++
	}
	return out
}

// Similar returns hits for a normalized query vector.
func (s *Snapshot) Similar(query []float32, k int) ([]Hit, error) {
	if s.Len() == 0 {
		return nil, nil
	}
	return s.Index.Search(embeddings.Normalize(embeddings.Clone(query)), k)
}
