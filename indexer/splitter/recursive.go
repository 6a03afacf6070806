// Package splitter breaks extracted text into overlapping chunks.
package splitter

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators are tried in order, from paragraph breaks down to single characters.
var DefaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// Splitter divides text into chunks.
type Splitter interface {
	Split(text string) []string
}

// Recursive splits on the first separator present in the text and recurses with finer separators
// into pieces still longer than the chunk size. Small pieces are merged back up to the chunk size,
// carrying up to overlap characters into the next chunk. Separators stay attached to the start of
// the following piece. Lengths are counted in characters.
type Recursive struct {
	size       int
	overlap    int
	separators []string
}

// NewRecursive creates a recursive splitter; non-positive size and negative overlap take defaults.
func NewRecursive(size, overlap int, separators ...string) *Recursive {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 5
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Recursive{size: size, overlap: overlap, separators: separators}
}

// Split returns the trimmed, non-empty chunks of text.
func (r *Recursive) Split(text string) []string {
	return r.split(text, r.separators)
}

func (r *Recursive) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, candidate := range separators {
		if candidate == "" {
			separator = candidate
			break
		}
		if strings.Contains(text, candidate) {
			separator = candidate
			finer = separators[i+1:]
			break
		}
	}

	var chunks, pending []string
	for _, piece := range splitKeep(text, separator) {
		if utf8.RuneCountInString(piece) < r.size {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, r.merge(pending)...)
			pending = nil
		}
		if len(finer) == 0 {
			chunks = append(chunks, piece)
			continue
		}
		chunks = append(chunks, r.split(piece, finer)...)
	}
	if len(pending) > 0 {
		chunks = append(chunks, r.merge(pending)...)
	}
	return chunks
}

// merge joins pieces into chunks of at most size characters, keeping an overlap tail.
func (r *Recursive) merge(pieces []string) []string {
	var chunks, current []string
	total := 0
	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > r.size && len(current) > 0 {
			if chunk := join(current); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > r.overlap || (total+n > r.size && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if chunk := join(current); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

// splitKeep splits text on separator, prefixing each separator to the piece after it.
// An empty separator splits into characters.
func splitKeep(text, separator string) []string {
	var out []string
	if separator == "" {
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, separator)
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, part := range parts[1:] {
		out = append(out, separator+part)
	}
	return out
}
