// Package extract turns source files into plain text, one extractor per file extension.
package extract

import (
	"errors"
	"path"
	"sort"
	"strings"
)

// ErrUnreadable is returned when a file cannot be parsed in its declared format.
var ErrUnreadable = errors.New("unreadable document")

// Extractor returns the plain text of a document.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Func adapts a function to Extractor.
type Func func(data []byte) (string, error)

// Extract calls f.
func (f Func) Extract(data []byte) (string, error) { return f(data) }

// Factory maps file extensions to extractors.
type Factory struct {
	byExt map[string]Extractor
}

// NewFactory returns a factory with pdf, docx, xlsx, xls, txt and md extractors registered.
func NewFactory() *Factory {
	f := &Factory{byExt: map[string]Extractor{}}
	f.Register(".pdf", Func(PDF))
	f.Register(".docx", Func(DOCX))
	f.Register(".xlsx", Func(Excel))
	f.Register(".xls", Func(XLS))
	f.Register(".txt", Func(Text))
	f.Register(".md", Func(Text))
	return f
}

// Register adds or replaces the extractor for ext.
func (f *Factory) Register(ext string, extractor Extractor) {
	f.byExt[normalizeExt(ext)] = extractor
}

// Lookup returns the extractor for the extension of location.
func (f *Factory) Lookup(location string) (Extractor, bool) {
	extractor, ok := f.byExt[strings.ToLower(path.Ext(location))]
	return extractor, ok
}

// Extensions returns the registered extensions in sorted order.
func (f *Factory) Extensions() []string {
	out := make([]string, 0, len(f.byExt))
	for ext := range f.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
