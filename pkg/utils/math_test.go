package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	x := []float32{3, 4}
	NormalizeL2(x)
	if math.Abs(float64(x[0])-0.6) > 1e-6 || math.Abs(float64(x[1])-0.8) > 1e-6 {
		t.Errorf("got %v, want [0.6 0.8]", x)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for _, v := range zero {
		if v != 0 {
			t.Errorf("zero vector changed: %v", zero)
		}
	}

	NormalizeL2(nil)
}
