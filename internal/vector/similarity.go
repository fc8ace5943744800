package vector

import (
	"fmt"
	"math"
)

// CosineSimilarity returns dot(a,b) / (‖a‖·‖b‖), or 0 when either vector has zero norm
// or the result is not a finite number. a and b must have the same length; a mismatch panics.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector: length mismatch %d != %d", len(a), len(b)))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(cos) || math.IsInf(cos, 0) {
		return 0
	}
	// Rounding can push |cos| a hair past 1 for parallel vectors.
	return float32(math.Max(-1, math.Min(1, cos)))
}
