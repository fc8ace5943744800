package embedding

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/hyperjump/imi/internal/apperr"
	"github.com/hyperjump/imi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDims = 16

type failingTokenizer struct{}

func (failingTokenizer) Encode(string) (*Encoding, error) {
	return nil, errors.New("unknown normalizer state")
}

type failingEncoder struct{ calls int }

func (f *failingEncoder) Encode(context.Context, *Encoding) (*HiddenStates, error) {
	f.calls++
	return nil, errors.New("session run failed")
}

func (f *failingEncoder) Close() error { return nil }

// shapeEncoder returns hidden states of a fixed, possibly wrong, hidden size.
type shapeEncoder struct{ hidden int }

func (s shapeEncoder) Encode(_ context.Context, enc *Encoding) (*HiddenStates, error) {
	return &HiddenStates{Data: make([]float32, enc.Len()*s.hidden), SeqLen: enc.Len(), Hidden: s.hidden}, nil
}

func (s shapeEncoder) Close() error { return nil }

func newTestEmbedder(opts ...Option) *TextEmbedder {
	return NewTextEmbedder(&WordTokenizer{}, NewHashEncoder(testDims), testDims, opts...)
}

func l2(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestTextEmbedder_UnitNorm(t *testing.T) {
	e := newTestEmbedder()
	for _, text := range []string{"cat", "dog", "the quick brown fox", "héllo wörld ✓"} {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, testDims)
		assert.InDelta(t, 1.0, l2(vec), 1e-4, "text %q", text)
	}
}

func TestTextEmbedder_Deterministic(t *testing.T) {
	e := newTestEmbedder()
	a, err := e.Embed(context.Background(), "semantic lookup over notes")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "semantic lookup over notes")
	require.NoError(t, err)
	assert.InDeltaSlice(t, a, b, 1e-6)
}

func TestTextEmbedder_EmptyInputIsZeroVector(t *testing.T) {
	enc := &failingEncoder{}
	e := NewTextEmbedder(&WordTokenizer{}, enc, testDims)
	for _, text := range []string{"", "   \n\t"} {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, testDims)
		assert.Zero(t, l2(vec))
	}
	assert.Zero(t, enc.calls, "encoder must not run without attended tokens")
}

func TestTextEmbedder_InvalidUTF8(t *testing.T) {
	e := newTestEmbedder()
	_, err := e.Embed(context.Background(), "bad \xff\xfe bytes")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenizationFailure))
}

func TestTextEmbedder_TokenizerFailure(t *testing.T) {
	e := NewTextEmbedder(failingTokenizer{}, NewHashEncoder(testDims), testDims)
	_, err := e.Embed(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenizationFailure))
}

func TestTextEmbedder_InferenceFailure(t *testing.T) {
	e := NewTextEmbedder(&WordTokenizer{}, &failingEncoder{}, testDims)
	_, err := e.Embed(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInferenceFailure))
	assert.False(t, apperr.HasCode(err, apperr.CodeTokenizationFailure))
}

func TestTextEmbedder_ShapeMismatchIsInferenceFailure(t *testing.T) {
	e := NewTextEmbedder(&WordTokenizer{}, shapeEncoder{hidden: testDims + 1}, testDims)
	_, err := e.Embed(context.Background(), "two words")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInferenceFailure))
}

func TestTextEmbedder_CanceledContext(t *testing.T) {
	e := newTestEmbedder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Embed(ctx, "late")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, apperr.HasCode(err, apperr.CodeRequestCanceled))
}

// cancelingEncoder cancels the request context mid-inference and fails the way an
// interrupted session run does.
type cancelingEncoder struct{ cancel context.CancelFunc }

func (c cancelingEncoder) Encode(ctx context.Context, _ *Encoding) (*HiddenStates, error) {
	c.cancel()
	return nil, ctx.Err()
}

func (c cancelingEncoder) Close() error { return nil }

func TestTextEmbedder_CanceledDuringInference(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := NewTextEmbedder(&WordTokenizer{}, cancelingEncoder{cancel: cancel}, testDims)
	_, err := e.Embed(ctx, "interrupted")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeRequestCanceled))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextEmbedder_MaxTokens(t *testing.T) {
	e := newTestEmbedder(WithMaxTokens(2))
	truncated, err := e.Embed(context.Background(), "alpha beta gamma delta")
	require.NoError(t, err)
	prefix, err := e.Embed(context.Background(), "alpha beta")
	require.NoError(t, err)
	assert.InDeltaSlice(t, prefix, truncated, 1e-6)
}

func TestTextEmbedder_CacheReturnsCopies(t *testing.T) {
	e := newTestEmbedder(WithCache(8))
	first, err := e.Embed(context.Background(), "cached")
	require.NoError(t, err)
	want := cloneVector(first)
	first[0] = 42

	second, err := e.Embed(context.Background(), "cached")
	require.NoError(t, err)
	assert.Equal(t, want, second)
	assert.Equal(t, 1, e.cache.Len())
}

func TestTextEmbedder_Concurrent(t *testing.T) {
	e := newTestEmbedder(WithCache(4))
	want, err := e.Embed(context.Background(), "shared text")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := "shared text"
			if i%2 == 1 {
				text = "other text"
			}
			got, err := e.Embed(context.Background(), text)
			if err != nil {
				errs <- err
				return
			}
			if i%2 == 0 && l2(got) > 0 && got[0] != want[0] {
				errs <- errors.New("concurrent embed diverged")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestTextEmbedder_Accessors(t *testing.T) {
	e := newTestEmbedder(WithModelName("mini"))
	assert.Equal(t, testDims, e.Dimensions())
	assert.Equal(t, "mini", e.Model())
	assert.NoError(t, e.Close())
}

func TestMeanPool(t *testing.T) {
	hs := &HiddenStates{
		Data:   []float32{1, 2, 3, 4, 100, 100},
		SeqLen: 3,
		Hidden: 2,
	}
	pooled := MeanPool(hs, []int64{1, 1, 0})
	assert.InDeltaSlice(t, []float32{2, 3}, pooled, 1e-6)

	zero := MeanPool(hs, []int64{0, 0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, v, 1e-6)

	z := []float32{0, 0, 0}
	Normalize(z)
	assert.Equal(t, []float32{0, 0, 0}, z)
}

func BenchmarkMockEmbed(b *testing.B) {
	e := NewMock(&config.EmbeddingConfig{Dimensions: 384, MaxTokens: 512, CacheSize: -1}, nil)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}
