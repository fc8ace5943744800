package vector

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero a", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero b", []float32{1, 1}, []float32{0, 0}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"empty", []float32{}, []float32{}, 0},
		{"nan component", []float32{float32(math.NaN()), 1}, []float32{1, 1}, 0},
		{"inf component", []float32{float32(math.Inf(1)), 1}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestCosineSimilarity_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randVec := func() []float32 {
		v := make([]float32, 16)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		return v
	}
	for i := 0; i < 200; i++ {
		a, b := randVec(), randVec()
		ab := CosineSimilarity(a, b)
		assert.Equal(t, ab, CosineSimilarity(b, a), "symmetric")
		assert.GreaterOrEqual(t, ab, float32(-1))
		assert.LessOrEqual(t, ab, float32(1))
		assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-6)
	}
}

func TestCosineSimilarity_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { CosineSimilarity([]float32{1, 2}, []float32{1}) })
}
