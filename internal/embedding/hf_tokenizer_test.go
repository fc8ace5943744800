package embedding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/imi/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordPieceJSON is a minimal BERT-style tokenizer.json with a six-entry vocabulary.
const wordPieceJSON = `{
  "version": "1.0",
  "truncation": null,
  "padding": null,
  "added_tokens": [
    {"id": 0, "content": "[PAD]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true},
    {"id": 1, "content": "[UNK]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true},
    {"id": 2, "content": "[CLS]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true},
    {"id": 3, "content": "[SEP]", "single_word": false, "lstrip": false, "rstrip": false, "normalized": false, "special": true}
  ],
  "normalizer": null,
  "pre_tokenizer": {"type": "BertPreTokenizer"},
  "post_processor": {"type": "BertProcessing", "sep": ["[SEP]", 3], "cls": ["[CLS]", 2]},
  "decoder": null,
  "model": {
    "type": "WordPiece",
    "unk_token": "[UNK]",
    "continuing_subword_prefix": "##",
    "max_input_chars_per_word": 100,
    "vocab": {"[PAD]": 0, "[UNK]": 1, "[CLS]": 2, "[SEP]": 3, "cat": 4, "dog": 5}
  }
}`

func writeTokenizerFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadHFTokenizer_Missing(t *testing.T) {
	_, err := LoadHFTokenizer(filepath.Join(t.TempDir(), "absent.json"), false)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeArtifactMissing))
}

func TestLoadHFTokenizer_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{not json`},
		{"mistyped vocab", `{"model": {"type": "WordPiece", "vocab": "oops"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHFTokenizer(writeTokenizerFile(t, tt.content), false)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeArtifactInvalid))
		})
	}
}

func TestHFTokenizer_Encode(t *testing.T) {
	tok, err := LoadHFTokenizer(writeTokenizerFile(t, wordPieceJSON), false)
	require.NoError(t, err)

	enc, err := tok.Encode("cat dog")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, enc.IDs)
	assert.Equal(t, []int64{1, 1}, enc.AttentionMask)
	assert.Equal(t, []int64{0, 0}, enc.TypeIDs)
	assert.Equal(t, []int64{0, 0}, enc.SpecialTokensMask)

	enc, err = tok.Encode("bird")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, enc.IDs, "unknown words map to [UNK]")
}

func TestHFTokenizer_EncodeSpecialTokens(t *testing.T) {
	tok, err := LoadHFTokenizer(writeTokenizerFile(t, wordPieceJSON), true)
	require.NoError(t, err)

	enc, err := tok.Encode("cat dog")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 5, 3}, enc.IDs)
	assert.Equal(t, []int64{1, 1, 1, 1}, enc.AttentionMask)
	assert.Equal(t, []int64{1, 0, 0, 1}, enc.SpecialTokensMask)

	enc.Truncate(3)
	assert.Equal(t, []int64{2, 4, 3}, enc.IDs)
}

func TestHFTokenizer_EmptyTextEmbedsToZeroVector(t *testing.T) {
	tok, err := LoadHFTokenizer(writeTokenizerFile(t, wordPieceJSON), false)
	require.NoError(t, err)

	enc, err := tok.Encode("")
	require.NoError(t, err)
	assert.Zero(t, enc.Len())
	assert.Zero(t, enc.AttendedTokens())

	e := NewTextEmbedder(tok, NewHashEncoder(testDims), testDims)
	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, testDims), vec)

	vec, err = e.Embed(context.Background(), "cat dog")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, l2(vec), 1e-4)
}
