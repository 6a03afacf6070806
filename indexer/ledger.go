package indexer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/emergencykb/indexer/cache"
)

// LedgerFile is the hash ledger file name inside the storage directory.
const LedgerFile = "file_hashes.json"

// Entry records a processed source file: its content digest and how many documents it produced.
type Entry struct {
	Digest    string `json:"digest"`
	Documents int    `json:"documents"`
}

// Ledger maps source file paths to entries from the last ingestion run.
type Ledger struct {
	URL     string
	fs      afs.Service
	entries *cache.Map[string, Entry]
}

// NewLedger creates a ledger persisted at URL; an empty URL keeps it in memory only.
func NewLedger(URL string, fs afs.Service) *Ledger {
	if fs == nil {
		fs = afs.New()
	}
	return &Ledger{URL: URL, fs: fs, entries: cache.NewMap[string, Entry]()}
}

// Load reads the ledger; a missing file leaves it empty.
func (l *Ledger) Load(ctx context.Context) error {
	if l.URL == "" {
		return nil
	}
	ok, err := l.fs.Exists(ctx, l.URL)
	if err != nil {
		return fmt.Errorf("failed to check ledger %v: %w", l.URL, err)
	}
	if !ok {
		l.entries.Replace(nil)
		return nil
	}
	data, err := l.fs.DownloadWithURL(ctx, l.URL)
	if err != nil {
		return fmt.Errorf("failed to read ledger %v: %w", l.URL, err)
	}
	if err = l.entries.Load(data); err != nil {
		// an unreadable ledger only costs a full reprocess
		l.entries.Replace(nil)
	}
	return nil
}

// Replace swaps all entries and writes the ledger.
func (l *Ledger) Replace(ctx context.Context, entries map[string]Entry) error {
	l.entries.Replace(entries)
	if l.URL == "" {
		return nil
	}
	data, err := l.entries.Data()
	if err != nil {
		return err
	}
	if err = l.fs.Upload(ctx, l.URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write ledger %v: %w", l.URL, err)
	}
	return nil
}

// Unchanged reports whether path was recorded with digest.
func (l *Ledger) Unchanged(path, digest string) (Entry, bool) {
	entry, ok := l.entries.Get(path)
	return entry, ok && entry.Digest == digest
}

// Entries returns a copy of the ledger.
func (l *Ledger) Entries() map[string]Entry {
	return l.entries.Snapshot()
}
