package config

const (
	DefaultModelFile     = "model.onnx"
	DefaultTokenizerFile = "tokenizer.json"
	DefaultModelName     = "all-MiniLM-L6-v2"
	DefaultRepository    = "sentence-transformers/all-MiniLM-L6-v2"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8765
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Embedding.ModelDir == "" {
		cfg.Embedding.ModelDir = "./models"
	}
	if cfg.Embedding.ModelName == "" {
		cfg.Embedding.ModelName = DefaultModelName
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 512
	}
	if cfg.Embedding.OutputName == "" {
		cfg.Embedding.OutputName = "last_hidden_state"
	}
	if cfg.Embedding.IntraOpThreads == 0 {
		cfg.Embedding.IntraOpThreads = 4
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".md", ".txt"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
	if cfg.Fetch.BaseURL == "" {
		cfg.Fetch.BaseURL = "https://huggingface.co"
	}
	if cfg.Fetch.Repository == "" {
		cfg.Fetch.Repository = DefaultRepository
	}
	if cfg.Fetch.Revision == "" {
		cfg.Fetch.Revision = "main"
	}
	if cfg.Fetch.ModelFile == "" {
		cfg.Fetch.ModelFile = "onnx/model.onnx"
	}
	if cfg.Fetch.TokenizerFile == "" {
		cfg.Fetch.TokenizerFile = DefaultTokenizerFile
	}
}
