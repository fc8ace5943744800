// Package config provides configuration loading and structs for the imi server.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/imi/internal/apperr"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Watch     WatchConfig     `yaml:"watch"`
	Fetch     FetchConfig     `yaml:"fetch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// EmbeddingConfig holds the model, tokenizer and runtime settings of the embedder.
type EmbeddingConfig struct {
	// ModelDir is where model.onnx and tokenizer.json live when the explicit paths are unset.
	ModelDir         string `yaml:"model_dir"`
	ModelPath        string `yaml:"model_path"`
	TokenizerPath    string `yaml:"tokenizer_path"`
	ModelName        string `yaml:"model_name"`
	Dimensions       int    `yaml:"dimensions"`
	MaxTokens        int    `yaml:"max_tokens"`
	AddSpecialTokens bool   `yaml:"add_special_tokens"`
	UseTokenTypeIDs  *bool  `yaml:"use_token_type_ids"`
	OutputName       string `yaml:"output_name"`
	IntraOpThreads   int    `yaml:"intra_op_threads"`
	// RuntimeLibrary is the onnxruntime shared library; empty uses the platform default.
	RuntimeLibrary string `yaml:"onnxruntime_library"`
	// CacheSize is the number of cached embeddings; negative disables the cache.
	CacheSize int `yaml:"cache_size"`
}

// TokenTypeIDsOrDefault returns whether token_type_ids is fed to the model; defaults to true when unset.
func (e *EmbeddingConfig) TokenTypeIDsOrDefault() bool {
	if e.UseTokenTypeIDs != nil {
		return *e.UseTokenTypeIDs
	}
	return true
}

// SearchConfig holds search request limits.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// WatchConfig holds note directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// FetchConfig holds where `imi fetch` downloads artifacts from.
type FetchConfig struct {
	BaseURL       string `yaml:"base_url"`
	Repository    string `yaml:"repository"`
	Revision      string `yaml:"revision"`
	ModelFile     string `yaml:"model_file"`
	TokenizerFile string `yaml:"tokenizer_file"`
	Token         string `yaml:"token"`
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfigReadFailure, "failed to read config", "path", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfigParseInvalid, "failed to parse config", "path", path)
	}

	ApplyDefaults(&cfg)
	expandPaths(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and otherwise returns the defaults.
// Paths in the default config are expanded relative to the working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = &Config{}
	ApplyDefaults(cfg)
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		wd = "."
	}
	expandPaths(cfg, wd)
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeConfigParseInvalid, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return apperr.Wrap(err, apperr.CodeConfigReadFailure, "failed to write config", "path", path)
	}
	return nil
}

// ResolvedModelPath returns the model file, falling back to ModelDir/model.onnx.
func (e *EmbeddingConfig) ResolvedModelPath() string {
	if e.ModelPath != "" {
		return e.ModelPath
	}
	return filepath.Join(e.ModelDir, DefaultModelFile)
}

// ResolvedTokenizerPath returns the tokenizer file, falling back to ModelDir/tokenizer.json.
func (e *EmbeddingConfig) ResolvedTokenizerPath() string {
	if e.TokenizerPath != "" {
		return e.TokenizerPath
	}
	return filepath.Join(e.ModelDir, DefaultTokenizerFile)
}

func expandPaths(cfg *Config, configDir string) {
	cfg.Embedding.ModelDir = expandPath(cfg.Embedding.ModelDir, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	if cfg.Embedding.TokenizerPath != "" {
		cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)
	}
	if cfg.Embedding.RuntimeLibrary != "" {
		cfg.Embedding.RuntimeLibrary = expandPath(cfg.Embedding.RuntimeLibrary, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
