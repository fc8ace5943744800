package embedding

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hyperjump/imi/internal/apperr"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HFTokenizer wraps a HuggingFace tokenizer.json (WordPiece for the MiniLM family).
type HFTokenizer struct {
	tk               *tokenizer.Tokenizer
	addSpecialTokens bool
	mu               sync.Mutex
}

// LoadHFTokenizer parses the tokenizer.json at path.
func LoadHFTokenizer(path string, addSpecialTokens bool) (*HFTokenizer, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(err, apperr.CodeArtifactMissing, "tokenizer not found", "path", path)
		}
		return nil, apperr.Wrap(err, apperr.CodeArtifactInvalid, "tokenizer not readable", "path", path)
	}
	tk, err := loadTokenizerFile(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeArtifactInvalid, "failed to load tokenizer", "path", path)
	}
	return &HFTokenizer{tk: tk, addSpecialTokens: addSpecialTokens}, nil
}

// loadTokenizerFile turns the panics pretrained.FromFile raises on mistyped
// fields into errors.
func loadTokenizerFile(path string) (tk *tokenizer.Tokenizer, err error) {
	defer func() {
		if r := recover(); r != nil {
			tk, err = nil, fmt.Errorf("malformed tokenizer config: %v", r)
		}
	}()
	return pretrained.FromFile(path)
}

// Encode tokenizes text as a single sequence.
func (t *HFTokenizer) Encode(text string) (*Encoding, error) {
	t.mu.Lock()
	en, err := t.tk.EncodeSingle(text, t.addSpecialTokens)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := &Encoding{
		IDs:               make([]int64, len(en.Ids)),
		AttentionMask:     make([]int64, len(en.Ids)),
		TypeIDs:           make([]int64, len(en.Ids)),
		SpecialTokensMask: make([]int64, len(en.Ids)),
	}
	for i, id := range en.Ids {
		out.IDs[i] = int64(id)
		// Some post-processors leave the mask empty; every emitted id is then a real token.
		out.AttentionMask[i] = 1
		if i < len(en.AttentionMask) {
			out.AttentionMask[i] = int64(en.AttentionMask[i])
		}
		if i < len(en.TypeIds) {
			out.TypeIDs[i] = int64(en.TypeIds[i])
		}
		if i < len(en.SpecialTokenMask) {
			out.SpecialTokensMask[i] = int64(en.SpecialTokenMask[i])
		}
	}
	return out, nil
}
