package embeddings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  []float32
		expect []float32
	}{
		{name: "3-4-5", input: []float32{3, 4}, expect: []float32{0.6, 0.8}},
		{name: "zero vector unchanged", input: []float32{0, 0, 0}, expect: []float32{0, 0, 0}},
		{name: "unit stays unit", input: []float32{0, 1}, expect: []float32{0, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.input)
			assert.InDeltaSlice(t, tc.expect, got, 1e-6)
		})
	}
}

func TestCosineAndDot(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-6)
	assert.InDelta(t, 28.0, Dot(a, b), 1e-6)
	assert.Equal(t, float32(0), Cosine(a, []float32{0, 0, 0}))

	na, nb := Normalize(Clone(a)), Normalize(Clone(b))
	assert.InDelta(t, float64(Cosine(a, b)), float64(Dot(na, nb)), 1e-6)
}

func TestNormalizeAll(t *testing.T) {
	rows := NormalizeAll([][]float32{{1, 1}, {0, 5}})
	for _, row := range rows {
		var sum float64
		for _, x := range row {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	}
}
