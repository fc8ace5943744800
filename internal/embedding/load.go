package embedding

import (
	"github.com/hyperjump/imi/internal/artifacts"
	"github.com/hyperjump/imi/internal/config"
	"go.uber.org/zap"
)

// ONNXOptions configures an ONNXEncoder.
type ONNXOptions struct {
	ModelPath       string
	RuntimeLibrary  string
	OutputName      string
	UseTokenTypeIDs bool
	IntraOpThreads  int
	Hidden          int
}

// NewFromConfig loads the tokenizer and ONNX model named by cfg and returns a
// ready TextEmbedder. A missing or unparsable artifact is returned as an
// artifact error; callers should abort startup.
func NewFromConfig(cfg *config.EmbeddingConfig, logger *zap.Logger) (*TextEmbedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths, err := artifacts.Locate(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("loading tokenizer", zap.String("path", paths.Tokenizer))
	tok, err := LoadHFTokenizer(paths.Tokenizer, cfg.AddSpecialTokens)
	if err != nil {
		return nil, err
	}

	logger.Info("loading ONNX model", zap.String("path", paths.Model))
	enc, err := NewONNXEncoder(ONNXOptions{
		ModelPath:       paths.Model,
		RuntimeLibrary:  cfg.RuntimeLibrary,
		OutputName:      cfg.OutputName,
		UseTokenTypeIDs: cfg.TokenTypeIDsOrDefault(),
		IntraOpThreads:  cfg.IntraOpThreads,
		Hidden:          cfg.Dimensions,
	})
	if err != nil {
		return nil, err
	}

	return NewTextEmbedder(tok, enc, cfg.Dimensions,
		WithCache(cfg.CacheSize),
		WithMaxTokens(cfg.MaxTokens),
		WithModelName(cfg.ModelName),
		WithLogger(logger),
	), nil
}

// NewMock returns a TextEmbedder backed by WordTokenizer and HashEncoder. It
// needs no artifacts and is meant for client development and tests.
func NewMock(cfg *config.EmbeddingConfig, logger *zap.Logger) *TextEmbedder {
	return NewTextEmbedder(
		&WordTokenizer{AddSpecialTokens: cfg.AddSpecialTokens},
		NewHashEncoder(cfg.Dimensions),
		cfg.Dimensions,
		WithCache(cfg.CacheSize),
		WithMaxTokens(cfg.MaxTokens),
		WithModelName(cfg.ModelName+" (mock)"),
		WithLogger(logger),
	)
}
