// Package file loads agent configuration from a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable the agent reads at startup. Zero values are
// filled in from Default before use, so a partial file is fine.
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Paths     PathsConfig     `toml:"paths"`
}

// EmbeddingConfig configures the embedding service client.
type EmbeddingConfig struct {
	Endpoint          string  `toml:"endpoint"`
	Model             string  `toml:"model"`
	Dimensions        int     `toml:"dimensions"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	Concurrency       int     `toml:"concurrency"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ChunkingConfig configures passage splitting.
type ChunkingConfig struct {
	TargetSize int `toml:"target_size"`
	Overlap    int `toml:"overlap"`
}

// RetrievalConfig configures hybrid ranking.
type RetrievalConfig struct {
	CosineWeight  float64 `toml:"cosine_weight"`
	KeywordWeight float64 `toml:"keyword_weight"`
	KeywordCap    float64 `toml:"keyword_cap"`
	HeaderBonus   float64 `toml:"header_bonus"`
	TopK          int     `toml:"top_k"`
}

// PathsConfig configures on-disk locations. Empty values fall back to
// directories under ~/.cip-agent.
type PathsConfig struct {
	DataDir    string `toml:"data_dir"`
	SeedDir    string `toml:"seed_dir"`
	UploadsDir string `toml:"uploads_dir"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Endpoint:          "http://localhost:11434/api/embeddings",
			Model:             "nomic-embed-text",
			Dimensions:        768,
			TimeoutSeconds:    60,
			Concurrency:       4,
			RequestsPerSecond: 8,
		},
		Chunking: ChunkingConfig{
			TargetSize: 1000,
			Overlap:    200,
		},
		Retrieval: RetrievalConfig{
			CosineWeight:  0.7,
			KeywordWeight: 0.3,
			KeywordCap:    6,
			HeaderBonus:   3,
			TopK:          5,
		},
		Paths: PathsConfig{},
	}
}

// Load reads config.toml from configDir, filling any omitted field from
// Default. A missing file yields the defaults; a malformed file is an
// error. If configDir is empty, defaults to ~/.cip-agent.
func Load(configDir string) (Config, error) {
	cfg := Default()

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".cip-agent")
	}

	data, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var loaded Config
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	merge(&cfg, loaded)
	return cfg, nil
}

// merge overwrites defaults with any field the file actually set.
func merge(cfg *Config, loaded Config) {
	if loaded.Embedding.Endpoint != "" {
		cfg.Embedding.Endpoint = loaded.Embedding.Endpoint
	}
	if loaded.Embedding.Model != "" {
		cfg.Embedding.Model = loaded.Embedding.Model
	}
	if loaded.Embedding.Dimensions > 0 {
		cfg.Embedding.Dimensions = loaded.Embedding.Dimensions
	}
	if loaded.Embedding.TimeoutSeconds > 0 {
		cfg.Embedding.TimeoutSeconds = loaded.Embedding.TimeoutSeconds
	}
	if loaded.Embedding.Concurrency > 0 {
		cfg.Embedding.Concurrency = loaded.Embedding.Concurrency
	}
	if loaded.Embedding.RequestsPerSecond != 0 {
		cfg.Embedding.RequestsPerSecond = loaded.Embedding.RequestsPerSecond
	}
	if loaded.Chunking.TargetSize > 0 {
		cfg.Chunking.TargetSize = loaded.Chunking.TargetSize
	}
	if loaded.Chunking.Overlap > 0 {
		cfg.Chunking.Overlap = loaded.Chunking.Overlap
	}
	if loaded.Retrieval.CosineWeight > 0 {
		cfg.Retrieval.CosineWeight = loaded.Retrieval.CosineWeight
	}
	if loaded.Retrieval.KeywordWeight > 0 {
		cfg.Retrieval.KeywordWeight = loaded.Retrieval.KeywordWeight
	}
	if loaded.Retrieval.KeywordCap > 0 {
		cfg.Retrieval.KeywordCap = loaded.Retrieval.KeywordCap
	}
	if loaded.Retrieval.HeaderBonus > 0 {
		cfg.Retrieval.HeaderBonus = loaded.Retrieval.HeaderBonus
	}
	if loaded.Retrieval.TopK > 0 {
		cfg.Retrieval.TopK = loaded.Retrieval.TopK
	}
	if loaded.Paths.DataDir != "" {
		cfg.Paths.DataDir = loaded.Paths.DataDir
	}
	if loaded.Paths.SeedDir != "" {
		cfg.Paths.SeedDir = loaded.Paths.SeedDir
	}
	if loaded.Paths.UploadsDir != "" {
		cfg.Paths.UploadsDir = loaded.Paths.UploadsDir
	}
}

// Save writes the configuration to config.toml in configDir, creating the
// directory if needed.
func Save(configDir string, cfg Config) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Write with restricted permissions
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
