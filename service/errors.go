package service

import (
	"errors"

	"github.com/viant/emergencykb/vectordb"
)

var (
	// ErrNoDocuments is returned when a build has nothing to index.
	ErrNoDocuments = errors.New("no documents to index")
	// ErrNoRelevantDocuments is returned when every candidate document fails classification.
	ErrNoRelevantDocuments = errors.New("no relevant documents")
	// ErrIndexOutOfSync is returned in strict mode when a search hit has no matching document.
	ErrIndexOutOfSync = errors.New("index out of sync with documents")
	// ErrDimensionMismatch is returned when new embeddings do not match the index dimension.
	ErrDimensionMismatch = vectordb.ErrDimensionMismatch
	// ErrEmptyIndex is returned by Save when nothing has been built or loaded.
	ErrEmptyIndex = errors.New("index is empty")
)
