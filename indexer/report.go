package indexer

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a per-file ingestion failure.
type ErrorKind string

const (
	KindDownload ErrorKind = "download"
	KindExtract  ErrorKind = "extract"
	KindEmpty    ErrorKind = "empty"
)

// FileError records a file that produced no documents.
type FileError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Report summarizes one ingestion run.
type Report struct {
	// Files is the number of eligible files found.
	Files int
	// Processed files were extracted and split in this run.
	Processed int
	// Skipped files were unchanged; their previous documents were carried forward.
	Skipped int
	Failed  []*FileError
	// Chunks counts split results before filtering.
	Chunks        int
	Short         int
	Irrelevant    int
	Uncategorized int
	// Kept is the number of documents returned, carried forward ones included.
	Kept int
	// Fallback is set when the builtin documents were returned.
	Fallback bool
	// Reused is set when the previous documents were returned because nothing survived.
	Reused bool
}

func (r *Report) fail(path string, kind ErrorKind, err error) {
	r.Failed = append(r.Failed, &FileError{Path: path, Kind: kind, Err: err})
}

// String returns a one-line summary.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "files=%d processed=%d skipped=%d failed=%d chunks=%d short=%d irrelevant=%d uncategorized=%d kept=%d",
		r.Files, r.Processed, r.Skipped, len(r.Failed), r.Chunks, r.Short, r.Irrelevant, r.Uncategorized, r.Kept)
	if r.Fallback {
		b.WriteString(" fallback=builtin")
	}
	if r.Reused {
		b.WriteString(" fallback=previous")
	}
	return b.String()
}
