package indexer

import (
	"github.com/viant/emergencykb/indexer/fs"
	"github.com/viant/emergencykb/indexer/fs/extract"
	"github.com/viant/emergencykb/indexer/splitter"
	"github.com/viant/emergencykb/matching"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithFS replaces the source file service.
func WithFS(svc fs.Service) Option {
	return func(p *Pipeline) { p.fs = svc }
}

// WithMatcher sets the file selection rules.
func WithMatcher(m *matching.Manager) Option {
	return func(p *Pipeline) { p.matcher = m }
}

// WithExtractors replaces the extractor factory.
func WithExtractors(f *extract.Factory) Option {
	return func(p *Pipeline) { p.extractors = f }
}

// WithSplitter replaces the chunk splitter.
func WithSplitter(s splitter.Splitter) Option {
	return func(p *Pipeline) { p.splitter = s }
}

// WithLedger sets the hash ledger.
func WithLedger(l *Ledger) Option {
	return func(p *Pipeline) { p.ledger = l }
}

// WithLogf sets the logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(p *Pipeline) {
		if logf != nil {
			p.logf = logf
		}
	}
}
