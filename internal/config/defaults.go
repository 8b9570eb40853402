package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/osusume/data/db/osusume.db"
	}
	// CachePath stays empty by default: the result cache runs in memory
	// unless a path is configured.
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/osusume/data/indices/bleve"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/osusume/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 2 * time.Second
	}
	if cfg.Recommend.DefaultK == 0 {
		cfg.Recommend.DefaultK = 10
	}
	if cfg.Recommend.MaxK == 0 {
		cfg.Recommend.MaxK = 50
	}
	if cfg.Recommend.PoolLimit == 0 {
		cfg.Recommend.PoolLimit = 200
	}
	if cfg.Recommend.ContextCacheTTL == 0 {
		cfg.Recommend.ContextCacheTTL = time.Hour
	}
	if cfg.Recommend.ResponseCacheTTL == 0 {
		cfg.Recommend.ResponseCacheTTL = 10 * time.Minute
	}
	if cfg.Recommend.RecallTitleBoost == 0 {
		cfg.Recommend.RecallTitleBoost = 2.0
	}

	cfg.Scoring.ApplyDefaults()
	cfg.Diversity.ApplyDefaults()
	cfg.Personalization.ApplyDefaults()
}
