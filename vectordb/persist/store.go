// Package persist saves and loads index snapshots as a directory of files.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/bintly"

	"github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/vectordb"
)

// File names inside the storage directory.
const (
	DocumentsFile  = "documents.bin"
	EmbeddingsFile = "embeddings.bin"
	IndexFile      = "index.bin"
	ManifestFile   = "metadata.json"
	LockFile       = "writer.lock"
)

const defaultLockTimeout = 10 * time.Second

// Store reads and writes snapshots under a base URL.
type Store struct {
	baseURL     string
	fs          afs.Service
	lockTimeout time.Duration
}

// Option configures a Store.
type Option func(s *Store)

// WithFS replaces the AFS service.
func WithFS(fs afs.Service) Option {
	return func(s *Store) { s.fs = fs }
}

// WithLockTimeout sets how long Save waits for the writer lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// New creates a store rooted at baseURL; plain paths are treated as local directories.
func New(baseURL string, opts ...Option) *Store {
	s := &Store{baseURL: normalize(baseURL), lockTimeout: defaultLockTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	return s
}

// BaseURL returns the storage location.
func (s *Store) BaseURL() string { return s.baseURL }

// URL returns the location of name inside the storage directory.
func (s *Store) URL(name string) string { return url.Join(s.baseURL, name) }

// Exists reports whether the documents, embeddings and index files are all present.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	for _, name := range []string{DocumentsFile, EmbeddingsFile, IndexFile} {
		ok, err := s.fs.Exists(ctx, s.URL(name))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Save writes snapshot under the writer lock, each file through a temporary copy, and returns the
// manifest written last.
func (s *Store) Save(ctx context.Context, snapshot *vectordb.Snapshot, model string) (*Manifest, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("persist: nothing to save")
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	if url.Scheme(s.baseURL, file.Scheme) == file.Scheme {
		lock, err := acquireLock(ctx, url.Path(s.URL(LockFile)), s.lockTimeout)
		if err != nil {
			return nil, err
		}
		defer func() { _ = lock.release() }()
	}

	docs, err := encode(schema.Documents(snapshot.Documents))
	if err != nil {
		return nil, fmt.Errorf("failed to encode documents: %w", err)
	}
	matrix, err := encodeMatrix(snapshot.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode embeddings: %w", err)
	}
	index, err := encode(snapshot.Index)
	if err != nil {
		return nil, fmt.Errorf("failed to encode index: %w", err)
	}
	manifest := &Manifest{
		ModelName:          model,
		NumDocuments:       snapshot.Len(),
		EmbeddingDimension: snapshot.Dim(),
		CreatedAt:          time.Now().UTC(),
		SourceBreakdown:    snapshot.SourceBreakdown(),
		BuildID:            uuid.NewString(),
	}
	meta, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	for _, item := range []struct {
		name string
		data []byte
	}{
		{DocumentsFile, docs},
		{EmbeddingsFile, matrix},
		{IndexFile, index},
		{ManifestFile, meta},
	} {
		if err := s.put(ctx, item.name, item.data); err != nil {
			return nil, err
		}
	}
	return manifest, nil
}

// put writes data over name. Local files go through a temporary file renamed into place;
// object stores replace an object in a single upload.
func (s *Store) put(ctx context.Context, name string, data []byte) error {
	final := s.URL(name)
	if url.Scheme(final, file.Scheme) != file.Scheme {
		if err := s.fs.Upload(ctx, final, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to write %v: %w", final, err)
		}
		return nil
	}
	tmp := final + ".tmp"
	if err := s.fs.Upload(ctx, tmp, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %v: %w", tmp, err)
	}
	if err := os.Rename(url.Path(tmp), url.Path(final)); err != nil {
		_ = os.Remove(url.Path(tmp))
		return fmt.Errorf("failed to replace %v: %w", final, err)
	}
	return nil
}

// Load reads a saved snapshot. Missing core files yield ErrNotFound; undecodable files or
// disagreeing shapes yield ErrCorrupt. The manifest is nil when metadata.json is absent.
func (s *Store) Load(ctx context.Context) (*vectordb.Snapshot, *Manifest, error) {
	ok, err := s.Exists(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%v: %w", s.baseURL, ErrNotFound)
	}
	data := map[string][]byte{}
	for _, name := range []string{DocumentsFile, EmbeddingsFile, IndexFile} {
		if data[name], err = s.fs.DownloadWithURL(ctx, s.URL(name)); err != nil {
			return nil, nil, fmt.Errorf("failed to read %v: %w", name, err)
		}
	}
	var docs schema.Documents
	if err = decode(data[DocumentsFile], &docs); err != nil {
		return nil, nil, fmt.Errorf("%v: %v: %w", DocumentsFile, err, ErrCorrupt)
	}
	rows, err := decodeMatrix(data[EmbeddingsFile])
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %v: %w", EmbeddingsFile, err, ErrCorrupt)
	}
	index := &vectordb.Index{}
	if err = decode(data[IndexFile], index); err != nil {
		return nil, nil, fmt.Errorf("%v: %v: %w", IndexFile, err, ErrCorrupt)
	}
	snapshot := &vectordb.Snapshot{Documents: docs, Embeddings: rows, Index: index}
	if err = snapshot.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrCorrupt)
	}
	manifest, err := s.Manifest(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, err
	}
	return snapshot, manifest, nil
}

// Manifest reads metadata.json.
func (s *Store) Manifest(ctx context.Context) (*Manifest, error) {
	URL := s.URL(ManifestFile)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%v: %w", URL, ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	manifest := &Manifest{}
	if err = json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("%v: %v: %w", ManifestFile, err, ErrCorrupt)
	}
	return manifest, nil
}

type encoder interface {
	EncodeBinary(stream *bintly.Writer) error
}

type decoder interface {
	DecodeBinary(stream *bintly.Reader) error
}

func encode(value encoder) ([]byte, error) {
	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)
	if err := value.EncodeBinary(writer); err != nil {
		return nil, err
	}
	out := make([]byte, len(writer.Bytes()))
	copy(out, writer.Bytes())
	return out, nil
}

func decode(data []byte, value decoder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("truncated data: %v", r)
		}
	}()
	readers := bintly.NewReaders()
	reader := readers.Get()
	defer readers.Put(reader)
	if err = reader.FromBytes(data); err != nil {
		return err
	}
	return value.DecodeBinary(reader)
}

func normalize(location string) string {
	if url.Scheme(location, "") != "" {
		return location
	}
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	return url.ToFileURL(location)
}
