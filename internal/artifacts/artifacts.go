// Package artifacts locates the model and tokenizer files the embedder needs
// and downloads them from a HuggingFace-style repository.
package artifacts

import (
	"errors"
	"fmt"
	"os"

	"github.com/hyperjump/imi/internal/apperr"
	"github.com/hyperjump/imi/internal/config"
)

// Paths are the resolved artifact files.
type Paths struct {
	Model     string
	Tokenizer string
}

// Locate resolves the artifact paths from cfg and checks that both are readable regular files.
func Locate(cfg *config.EmbeddingConfig) (Paths, error) {
	p := Paths{
		Model:     cfg.ResolvedModelPath(),
		Tokenizer: cfg.ResolvedTokenizerPath(),
	}
	if err := checkFile(p.Model, "model"); err != nil {
		return Paths{}, err
	}
	if err := checkFile(p.Tokenizer, "tokenizer"); err != nil {
		return Paths{}, err
	}
	return p, nil
}

func checkFile(path, kind string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.Wrapf(err, apperr.CodeArtifactMissing,
				"%s not found at %s; run `imi fetch` or place the file there", kind, path)
		}
		return apperr.Wrapf(err, apperr.CodeArtifactInvalid, "%s at %s is not readable", kind, path)
	}
	if !info.Mode().IsRegular() {
		return apperr.New(apperr.CodeArtifactInvalid, fmt.Sprintf("%s at %s is not a regular file", kind, path))
	}
	if info.Size() == 0 {
		return apperr.New(apperr.CodeArtifactInvalid, fmt.Sprintf("%s at %s is empty", kind, path))
	}
	return nil
}
