// Package simple provides a deterministic offline embedder based on hashed token counts.
package simple

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"
)

const defaultDim = 256

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Embedder maps text to a hashed bag-of-words vector. Texts sharing vocabulary
// score higher, which is enough for local runs without an embedding backend.
type Embedder struct {
	Dim int
}

// New creates an embedder with dim buckets (default 256).
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = defaultDim
	}
	return &Embedder{Dim: dim}
}

// Model returns the embedder identifier.
func (e *Embedder) Model() string {
	return fmt.Sprintf("simple-hash-%d", e.dim())
}

// EmbedDocuments embeds documents deterministically.
func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = e.embed(doc)
	}
	return out, nil
}

// EmbedQuery embeds a query deterministically.
func (e *Embedder) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	return e.embed(q), nil
}

func (e *Embedder) dim() int {
	if e.Dim <= 0 {
		return defaultDim
	}
	return e.Dim
}

func (e *Embedder) embed(text string) []float32 {
	dim := e.dim()
	counts := map[uint64]int{}
	for _, token := range Tokenize(text) {
		if _, stop := stopWords[token]; stop {
			continue
		}
		counts[highwayhash.Sum64([]byte(token), key)%uint64(dim)]++
	}
	v := make([]float32, dim)
	for bucket, n := range counts {
		v[bucket] = float32(1 + math.Log(float64(n)))
	}
	return v
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {}, "do": {}, "for": {},
	"from": {}, "if": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"what": {}, "with": {}, "your": {}, "you": {},
}
