package embedding

import "github.com/hyperjump/imi/pkg/utils"

// MeanPool averages the hidden vectors of the positions whose mask is non-zero.
// When no position is attended the result is the zero vector.
func MeanPool(hs *HiddenStates, mask []int64) []float32 {
	pooled := make([]float32, hs.Hidden)
	count := 0
	for i := 0; i < hs.SeqLen && i < len(mask); i++ {
		if mask[i] == 0 {
			continue
		}
		for j, v := range hs.Row(i) {
			pooled[j] += v
		}
		count++
	}
	if count == 0 {
		return pooled
	}
	inv := 1 / float32(count)
	for j := range pooled {
		pooled[j] *= inv
	}
	return pooled
}

// Normalize scales v in place to unit L2 norm. The zero vector is left unchanged.
func Normalize(v []float32) {
	utils.NormalizeL2(v)
}
