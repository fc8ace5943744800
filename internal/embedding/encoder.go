package embedding

import (
	"context"
	"fmt"
	"math"
)

// HiddenStates is a row-major (SeqLen, Hidden) tensor of per-token encoder outputs.
type HiddenStates struct {
	Data   []float32
	SeqLen int
	Hidden int
}

// Row returns the hidden vector at position i.
func (h *HiddenStates) Row(i int) []float32 {
	return h.Data[i*h.Hidden : (i+1)*h.Hidden]
}

func (h *HiddenStates) check(seqLen, hidden int) error {
	if h == nil {
		return fmt.Errorf("encoder returned no output")
	}
	if h.SeqLen != seqLen || h.Hidden != hidden {
		return fmt.Errorf("hidden state shape (%d, %d), expected (%d, %d)", h.SeqLen, h.Hidden, seqLen, hidden)
	}
	if len(h.Data) != seqLen*hidden {
		return fmt.Errorf("hidden state holds %d values, expected %d", len(h.Data), seqLen*hidden)
	}
	return nil
}

// Encoder runs a sequence encoder on one tokenized sequence.
// Implementations must be safe for concurrent use.
type Encoder interface {
	Encode(ctx context.Context, enc *Encoding) (*HiddenStates, error)
	Close() error
}

// HashEncoder is a deterministic encoder for tests and the mock server mode.
// Each token's hidden vector is derived from its ID, so identical token
// sequences always produce identical states.
type HashEncoder struct {
	hidden int
}

// NewHashEncoder returns an encoder producing hidden vectors of the given size.
func NewHashEncoder(hidden int) *HashEncoder {
	if hidden <= 0 {
		hidden = 384
	}
	return &HashEncoder{hidden: hidden}
}

// Encode returns pseudo hidden states for enc.
func (e *HashEncoder) Encode(ctx context.Context, enc *Encoding) (*HiddenStates, error) {
	n := enc.Len()
	out := &HiddenStates{Data: make([]float32, n*e.hidden), SeqLen: n, Hidden: e.hidden}
	for i, id := range enc.IDs {
		row := out.Row(i)
		for j := range row {
			row[j] = float32(math.Sin(float64((id+1)*int64(j+1)))*0.1 + 0.01)
		}
	}
	return out, nil
}

// Close is a no-op for HashEncoder.
func (e *HashEncoder) Close() error {
	return nil
}
