package vectordb

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vectordb: dimension mismatch")
	// ErrParity indicates documents, embeddings and index disagree in size.
	ErrParity = errors.New("vectordb: documents, embeddings and index out of sync")
)
