package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8201
	}
	if cfg.Corpus.Root == "" {
		cfg.Corpus.Root = "/usr/local/var/miru/corpus"
	}
	if cfg.Corpus.Extensions == nil {
		cfg.Corpus.Extensions = []string{".jpg", ".jpeg", ".png", ".bmp"}
	}
	if cfg.Corpus.SnapshotPath == "" {
		cfg.Corpus.SnapshotPath = "/usr/local/var/miru/data/catalog.db"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.CandidateCap == 0 {
		cfg.Search.CandidateCap = 200
	}
	if cfg.Search.SimilarityThreshold == 0 {
		cfg.Search.SimilarityThreshold = 0.1
	}
	// The two weights default together so a config that sets only one does
	// not end up with a sum far from 1.
	if cfg.Search.FastWeight == 0 && cfg.Search.VLMWeight == 0 {
		cfg.Search.FastWeight = 0.3
		cfg.Search.VLMWeight = 0.7
	}
	if cfg.VLM.BaseURL == "" {
		cfg.VLM.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.VLM.APIKey == "" {
		cfg.VLM.APIKey = "ollama"
	}
	if cfg.VLM.Model == "" {
		cfg.VLM.Model = "llava:7b"
	}
	if cfg.VLM.Temperature == 0 {
		cfg.VLM.Temperature = 0.3
	}
	if cfg.VLM.MaxTokens == 0 {
		cfg.VLM.MaxTokens = 500
	}
	if cfg.VLM.TimeoutSeconds == 0 {
		cfg.VLM.TimeoutSeconds = 30
	}
	if cfg.VLM.Workers == 0 {
		cfg.VLM.Workers = 1
	}
	if cfg.VLM.CacheSize == 0 {
		cfg.VLM.CacheSize = 1024
	}
}
