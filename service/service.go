package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/emergencykb/classifier"
	"github.com/viant/emergencykb/embeddings"
	"github.com/viant/emergencykb/indexer"
	"github.com/viant/emergencykb/vectordb"
	"github.com/viant/emergencykb/vectordb/persist"
)

const (
	// DefaultSourceURL is the directory scanned for source documents.
	DefaultSourceURL = "./data/pdfs"
	// DefaultStorageURL is the directory holding the persisted index.
	DefaultStorageURL = "./data/vector_db"
	// DefaultCacheSize is the number of query vectors kept by the search cache.
	DefaultCacheSize = 256
)

// Option configures the Service.
type Option func(*Service)

// WithEmbedder sets the embedder.
func WithEmbedder(embedder embeddings.Embedder) Option {
	return func(s *Service) { s.embedder = embedder }
}

// WithLogf sets the logger; messages are dropped by default.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Service) {
		if logf != nil {
			s.logf = logf
		}
	}
}

// WithStrictIndex makes Search fail with ErrIndexOutOfSync instead of skipping orphan hits.
func WithStrictIndex(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// WithSourceURL sets the source directory.
func WithSourceURL(URL string) Option {
	return func(s *Service) { s.sourceURL = URL }
}

// WithStorageURL sets the persistence directory.
func WithStorageURL(URL string) Option {
	return func(s *Service) { s.storageURL = URL }
}

// WithTimeout bounds every embedding call.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.timeout = timeout }
}

// WithCacheSize sets the query vector cache capacity; zero or less disables it.
func WithCacheSize(size int) Option {
	return func(s *Service) { s.cacheSize = size }
}

// WithClassifierOptions passes options to the content classifier.
func WithClassifierOptions(opts ...classifier.Option) Option {
	return func(s *Service) { s.classifierOptions = append(s.classifierOptions, opts...) }
}

// WithIndexerOptions passes options to the ingestion pipeline.
func WithIndexerOptions(opts ...indexer.Option) Option {
	return func(s *Service) { s.indexerOptions = append(s.indexerOptions, opts...) }
}

// WithStoreOptions passes options to the persistence store.
func WithStoreOptions(opts ...persist.Option) Option {
	return func(s *Service) { s.storeOptions = append(s.storeOptions, opts...) }
}

// Service holds the current index snapshot and the components that build, persist and query it.
type Service struct {
	embedder   embeddings.Embedder
	sourceURL  string
	storageURL string
	strict     bool
	timeout    time.Duration
	cacheSize  int
	logf       func(format string, args ...any)

	classifierOptions []classifier.Option
	indexerOptions    []indexer.Option
	storeOptions      []persist.Option

	documentEmbedder embeddings.Embedder
	queryEmbedder    embeddings.Embedder
	classifier       *classifier.Classifier
	pipeline         *indexer.Pipeline
	store            *persist.Store

	mu       sync.Mutex
	snapshot atomic.Pointer[vectordb.Snapshot]
}

// New creates a Service. The classifier embeds the category descriptions here, so the embedder
// must be reachable.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	s := &Service{
		sourceURL:  DefaultSourceURL,
		storageURL: DefaultStorageURL,
		timeout:    embeddings.DefaultTimeout,
		cacheSize:  DefaultCacheSize,
		logf:       func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	s.documentEmbedder = embeddings.WithTimeout(s.embedder, s.timeout)
	s.queryEmbedder = embeddings.WithTimeout(embeddings.WithQueryCache(s.embedder, s.cacheSize), s.timeout)

	classifierOptions := append([]classifier.Option{classifier.WithLogf(s.logf)}, s.classifierOptions...)
	cls, err := classifier.New(ctx, s.documentEmbedder, classifierOptions...)
	if err != nil {
		return nil, err
	}
	s.classifier = cls
	s.store = persist.New(s.storageURL, s.storeOptions...)
	ledger := indexer.NewLedger(s.store.URL(indexer.LedgerFile), nil)
	indexerOptions := append([]indexer.Option{indexer.WithLedger(ledger), indexer.WithLogf(s.logf)}, s.indexerOptions...)
	s.pipeline = indexer.NewPipeline(s.sourceURL, cls, indexerOptions...)
	return s, nil
}

// Classifier returns the content classifier.
func (s *Service) Classifier() *classifier.Classifier { return s.classifier }

// Model returns the embedding model identifier.
func (s *Service) Model() string {
	return embeddings.ModelName(s.embedder, "unknown")
}

// Len returns the number of indexed documents.
func (s *Service) Len() int {
	return s.snapshot.Load().Len()
}
