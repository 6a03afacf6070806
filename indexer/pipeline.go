// Package indexer turns a source directory into classified document chunks.
package indexer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/viant/emergencykb/classifier"
	"github.com/viant/emergencykb/indexer/cache"
	"github.com/viant/emergencykb/indexer/fs"
	"github.com/viant/emergencykb/indexer/fs/extract"
	"github.com/viant/emergencykb/indexer/splitter"
	"github.com/viant/emergencykb/matching"
	"github.com/viant/emergencykb/matching/option"
	"github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/taxonomy"
)

const maxTitleLength = 100

// Pipeline extracts, splits and classifies the files of a source directory.
type Pipeline struct {
	sourceURL  string
	fs         fs.Service
	matcher    *matching.Manager
	extractors *extract.Factory
	splitter   splitter.Splitter
	classifier *classifier.Classifier
	ledger     *Ledger
	logf       func(format string, args ...any)
}

// NewPipeline creates a pipeline reading sourceURL. Without WithMatcher every file with a
// registered extractor is eligible.
func NewPipeline(sourceURL string, cls *classifier.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		sourceURL:  sourceURL,
		classifier: cls,
		logf:       func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fs == nil {
		p.fs = fs.NewAFS()
	}
	if p.extractors == nil {
		p.extractors = extract.NewFactory()
	}
	if p.matcher == nil {
		p.matcher = matching.New(option.WithInclusionPatterns(p.extractors.Extensions()...))
	}
	if p.splitter == nil {
		p.splitter = splitter.NewRecursive(splitter.DefaultChunkSize, splitter.DefaultChunkOverlap)
	}
	if p.ledger == nil {
		p.ledger = NewLedger("", nil)
	}
	return p
}

// SourceURL returns the source location.
func (p *Pipeline) SourceURL() string { return p.sourceURL }

// Ledger returns the hash ledger.
func (p *Pipeline) Ledger() *Ledger { return p.ledger }

// Files lists the eligible source files; a missing source directory yields none.
func (p *Pipeline) Files(ctx context.Context) ([]fs.File, bool, error) {
	location, err := fs.Normalize(p.sourceURL)
	if err != nil {
		return nil, false, err
	}
	exists, err := p.fs.Exists(ctx, location)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check source %v: %w", p.sourceURL, err)
	}
	if !exists {
		return nil, false, nil
	}
	files, err := fs.List(ctx, p.fs, location, p.eligible)
	if err != nil {
		return nil, true, err
	}
	return files, true, nil
}

func (p *Pipeline) eligible(location string, size int) bool {
	if p.matcher.IsExcluded(location, size) {
		return false
	}
	_, ok := p.extractors.Lookup(location)
	return ok
}

// Run ingests the source directory. Unless force is set, a file whose digest matches the ledger is
// not reprocessed when its documents are in prior or when it produced none last time; prior
// documents are carried forward. Files that fail are left out of the ledger and retried next run.
// When nothing survives, prior (or the builtin set when prior is empty) is returned instead.
func (p *Pipeline) Run(ctx context.Context, force bool, prior []schema.Document) ([]schema.Document, *Report, error) {
	report := &Report{}
	files, _, err := p.Files(ctx)
	if err != nil {
		return nil, report, err
	}
	report.Files = len(files)
	if len(files) == 0 {
		p.logf("ingest: no eligible files in %v, using builtin documents", p.sourceURL)
		return p.fallback(report, nil), report, nil
	}
	if err = p.ledger.Load(ctx); err != nil {
		return nil, report, err
	}

	previous := byPath(prior)
	entries := make(map[string]Entry, len(files))
	var documents []schema.Document
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		data, err := p.fs.Download(ctx, f.Object)
		if err != nil {
			report.fail(f.Path, KindDownload, err)
			p.logf("ingest: file=%v download failed: %v", f.Path, err)
			continue
		}
		digest, err := cache.Digest(data)
		if err != nil {
			return nil, report, fmt.Errorf("failed to digest %v: %w", f.Path, err)
		}
		if entry, ok := p.ledger.Unchanged(f.Path, digest); !force && ok && (len(previous[f.Path]) > 0 || entry.Documents == 0) {
			report.Skipped++
			carried := previous[f.Path]
			documents = append(documents, carried...)
			entries[f.Path] = Entry{Digest: digest, Documents: len(carried)}
			p.logf("ingest: file=%v unchanged, carried %d documents", f.Path, len(carried))
			continue
		}
		docs, err := p.process(ctx, &f, data, report)
		if err != nil {
			continue
		}
		report.Processed++
		documents = append(documents, docs...)
		entries[f.Path] = Entry{Digest: digest, Documents: len(docs)}
		p.logf("ingest: file=%v chunks=%d", f.Path, len(docs))
	}

	if err = p.ledger.Replace(ctx, entries); err != nil {
		return nil, report, err
	}
	if len(documents) == 0 {
		p.logf("ingest: no relevant chunks in %v", p.sourceURL)
		return p.fallback(report, prior), report, nil
	}
	report.Kept = len(documents)
	return documents, report, nil
}

// process extracts, splits and classifies one file; failures are recorded in report.
func (p *Pipeline) process(ctx context.Context, f *fs.File, data []byte, report *Report) ([]schema.Document, error) {
	extractor, _ := p.extractors.Lookup(f.Path)
	text, err := extractor.Extract(data)
	if err != nil {
		report.fail(f.Path, KindExtract, err)
		p.logf("ingest: file=%v extract failed: %v", f.Path, err)
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		err = fmt.Errorf("no text extracted")
		report.fail(f.Path, KindEmpty, err)
		p.logf("ingest: file=%v is empty", f.Path)
		return nil, err
	}
	stem := f.Stem()
	var docs []schema.Document
	for i, chunk := range p.splitter.Split(text) {
		report.Chunks++
		verdict := p.classifier.Evaluate(ctx, chunk)
		switch verdict.Reason {
		case classifier.ReasonTooShort:
			report.Short++
			continue
		case classifier.ReasonIrrelevant:
			report.Irrelevant++
			continue
		case classifier.ReasonUncategorized:
			report.Uncategorized++
			continue
		}
		chunk = strings.TrimSpace(chunk)
		docs = append(docs, schema.Document{
			Category: verdict.Classification.Category,
			Title:    Title(chunk, stem, i),
			Content:  chunk,
			Source:   stem,
			ChunkID:  i,
			FilePath: f.Path,
			Scores: &schema.Scores{
				Relevance:          verdict.Relevance.Score,
				CategoryConfidence: verdict.Classification.Confidence,
			},
		})
	}
	return docs, nil
}

func (p *Pipeline) fallback(report *Report, prior []schema.Document) []schema.Document {
	if len(prior) > 0 {
		report.Reused = true
		report.Kept = len(prior)
		return prior
	}
	report.Fallback = true
	docs := taxonomy.Builtin()
	report.Kept = len(docs)
	return docs
}

// Title returns the first line of chunk, at most 100 characters, without trailing periods;
// an empty result falls back to "<stem> - Part <index+1>".
func Title(chunk, stem string, index int) string {
	line := chunk
	if i := strings.IndexByte(line, '\n'); i != -1 {
		line = line[:i]
	}
	if utf8.RuneCountInString(line) > maxTitleLength {
		line = string([]rune(line)[:maxTitleLength])
	}
	title := strings.TrimRight(strings.TrimSpace(line), ".")
	if strings.TrimSpace(title) == "" {
		return fmt.Sprintf("%s - Part %d", stem, index+1)
	}
	return title
}

func byPath(docs []schema.Document) map[string][]schema.Document {
	out := map[string][]schema.Document{}
	for _, doc := range docs {
		if doc.FilePath == "" {
			continue
		}
		out[doc.FilePath] = append(out[doc.FilePath], doc)
	}
	return out
}
