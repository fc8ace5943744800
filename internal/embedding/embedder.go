// Package embedding turns text into unit-length embedding vectors:
// tokenize, run a sequence encoder, mean-pool over attended tokens, L2-normalize.
package embedding

import (
	"context"
	"unicode/utf8"

	"github.com/hyperjump/imi/internal/apperr"
	"go.uber.org/zap"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Model() string
	Close() error
}

// TextEmbedder composes a Tokenizer and an Encoder into an Embedder. Its
// tokenizer and encoder are fixed at construction and shared by all callers.
type TextEmbedder struct {
	tokenizer  Tokenizer
	encoder    Encoder
	dimensions int
	maxTokens  int
	model      string
	cache      *EmbeddingCache
	logger     *zap.Logger
}

// Option configures a TextEmbedder.
type Option func(*TextEmbedder)

// WithCache enables an LRU cache of the given size. size <= 0 disables caching.
func WithCache(size int) Option {
	return func(e *TextEmbedder) {
		if size > 0 {
			e.cache = NewEmbeddingCache(size)
		} else {
			e.cache = nil
		}
	}
}

// WithMaxTokens truncates token sequences to n positions. n <= 0 disables truncation.
func WithMaxTokens(n int) Option {
	return func(e *TextEmbedder) { e.maxTokens = n }
}

// WithModelName sets the name reported by Model.
func WithModelName(name string) Option {
	return func(e *TextEmbedder) { e.model = name }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *TextEmbedder) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewTextEmbedder returns an embedder producing vectors of the given dimension.
// dimensions must equal the encoder's hidden size.
func NewTextEmbedder(tok Tokenizer, enc Encoder, dimensions int, opts ...Option) *TextEmbedder {
	e := &TextEmbedder{
		tokenizer:  tok,
		encoder:    enc,
		dimensions: dimensions,
		model:      "unknown",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns the normalized mean-pooled embedding of text.
//
// Text that yields no attended tokens (for example the empty string) embeds
// to the zero vector of the configured dimension.
func (e *TextEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(text); ok {
			return cached, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeRequestCanceled, "embedding canceled")
	}
	if !utf8.ValidString(text) {
		return nil, apperr.New(apperr.CodeTokenizationFailure, "text is not valid UTF-8", "text_length", len(text))
	}

	enc, err := e.tokenizer.Encode(text)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeTokenizationFailure, "tokenization failed", "text_length", len(text))
	}
	enc.Truncate(e.maxTokens)

	var vec []float32
	if enc.Len() == 0 || enc.AttendedTokens() == 0 {
		vec = make([]float32, e.dimensions)
	} else {
		hs, err := e.encoder.Encode(ctx, enc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperr.Wrap(err, apperr.CodeRequestCanceled, "embedding canceled", "seq_len", enc.Len())
			}
			return nil, apperr.Wrap(err, apperr.CodeInferenceFailure, "inference failed", "seq_len", enc.Len())
		}
		if err := hs.check(enc.Len(), e.dimensions); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInferenceFailure, "unexpected encoder output", "seq_len", enc.Len())
		}
		vec = MeanPool(hs, enc.AttentionMask)
		Normalize(vec)
	}
	e.logger.Debug("embedded text", zap.Int("text_length", len(text)), zap.Int("tokens", enc.Len()))

	if e.cache != nil {
		e.cache.Set(text, vec)
	}
	return vec, nil
}

// Dimensions returns the embedding dimension.
func (e *TextEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the model name.
func (e *TextEmbedder) Model() string {
	return e.model
}

// Close releases the encoder.
func (e *TextEmbedder) Close() error {
	return e.encoder.Close()
}
