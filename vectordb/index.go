package vectordb

import (
	"fmt"
	"sort"

	"github.com/viant/bintly"
	"github.com/viant/emergencykb/embeddings"
)

// Hit is a search match: the row position in the index and its inner-product score.
type Hit struct {
	Position int
	Score    float32
}

// Index is a flat inner-product index over fixed-dimension vectors stored row-major.
// Callers normalize vectors so that inner product equals cosine similarity.
type Index struct {
	dim  int
	rows int
	data []float32
}

// NewIndex creates an empty index; dim 0 adopts the dimension of the first added vector.
func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

// Dim returns the vector dimension.
func (x *Index) Dim() int { return x.dim }

// Len returns the number of rows.
func (x *Index) Len() int { return x.rows }

// Add appends vectors as new rows.
func (x *Index) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if x.dim == 0 && x.rows == 0 {
			x.dim = len(v)
		}
		if len(v) != x.dim || x.dim == 0 {
			return fmt.Errorf("vector %d has dimension %d, index has %d: %w", i, len(v), x.dim, ErrDimensionMismatch)
		}
	}
	for _, v := range vectors {
		x.data = append(x.data, v...)
		x.rows++
	}
	return nil
}

// Vector returns a copy of row i.
func (x *Index) Vector(i int) []float32 {
	return embeddings.Clone(x.data[i*x.dim : (i+1)*x.dim])
}

// Search returns up to k rows with the highest inner product against query,
// ordered by descending score and then by ascending position.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if x.rows == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d: %w", len(query), x.dim, ErrDimensionMismatch)
	}
	hits := make([]Hit, x.rows)
	for i := 0; i < x.rows; i++ {
		hits[i] = Hit{Position: i, Score: embeddings.Dot(query, x.data[i*x.dim:(i+1)*x.dim])}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Clone returns a deep copy.
func (x *Index) Clone() *Index {
	data := make([]float32, len(x.data))
	copy(data, x.data)
	return &Index{dim: x.dim, rows: x.rows, data: data}
}

// EncodeBinary writes the dimension, the row count and the row-major values.
func (x *Index) EncodeBinary(stream *bintly.Writer) error {
	stream.Int(x.dim)
	stream.Int(x.rows)
	for _, v := range x.data {
		stream.Float32(v)
	}
	return nil
}

// DecodeBinary reads an index written by EncodeBinary.
func (x *Index) DecodeBinary(stream *bintly.Reader) error {
	var dim, rows int
	stream.Int(&dim)
	stream.Int(&rows)
	if dim < 0 || rows < 0 || (rows > 0 && dim == 0) {
		return fmt.Errorf("invalid index header dim=%d rows=%d", dim, rows)
	}
	n := dim * rows
	data := make([]float32, 0, min(n, 1<<16))
	for i := 0; i < n; i++ {
		var v float32
		stream.Float32(&v)
		data = append(data, v)
	}
	x.dim, x.rows, x.data = dim, rows, data
	return nil
}
