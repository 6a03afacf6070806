package persist

import "errors"

var (
	// ErrNotFound indicates one of the core files is missing.
	ErrNotFound = errors.New("persist: no saved index")
	// ErrCorrupt indicates a saved file could not be decoded or the files disagree in shape.
	ErrCorrupt = errors.New("persist: saved index corrupt")
	// ErrLocked indicates another writer holds the storage lock.
	ErrLocked = errors.New("persist: storage locked by another writer")
)
