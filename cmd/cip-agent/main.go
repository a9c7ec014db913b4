package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	configfile "github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/config/file"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/embedding/openai"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/reader"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/reader/pdf"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/reader/plaintext"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/storage/files"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/storage/sqlite"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driving/cli"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/chunker"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/corpus"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/services"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/standards"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/embedcache"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional; endpoint and API key commonly live in a local .env.
	_ = godotenv.Load()

	cfg, err := configfile.Load(os.Getenv("CIP_AGENT_CONFIG_DIR"))
	if err != nil {
		return err
	}
	applyEnvOverrides(&cfg)

	dataDir := cfg.Paths.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cip-agent", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	uploadsDir := cfg.Paths.UploadsDir
	if uploadsDir == "" {
		uploadsDir = filepath.Join(dataDir, "uploads")
	}

	embedder := openai.NewEmbeddingService(openai.Config{
		Endpoint:          cfg.Embedding.Endpoint,
		APIKey:            os.Getenv("EMBEDDING_API_KEY"),
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Timeout:           time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
		Concurrency:       cfg.Embedding.Concurrency,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	defer embedder.Close()

	// Persistence is an optimisation: the agent still works from an empty
	// index when the database cannot be opened.
	var corpusCache driven.CorpusCache
	if cache, err := sqlite.NewCorpusCache(dataDir); err != nil {
		logger.Warn("corpus cache unavailable: %v", err)
	} else {
		corpusCache = cache
		defer cache.Close()
	}

	embedCache := embedcache.New(filepath.Join(dataDir, "embeddings.json"))
	if err := embedCache.Load(); err != nil {
		logger.Warn("embedding cache load failed: %v", err)
	}

	index := corpus.NewIndex()
	registry := standards.NewRegistry()

	pipeline := services.NewIngestionPipeline(services.PipelineConfig{
		Reader:      reader.NewRegistry(pdf.New(), plaintext.New()),
		Embedder:    embedder,
		Index:       index,
		Registry:    registry,
		EmbedCache:  embedCache,
		CorpusCache: corpusCache,
		Chunker: chunker.New(
			chunker.WithTargetSize(cfg.Chunking.TargetSize),
			chunker.WithOverlap(cfg.Chunking.Overlap),
		),
	})

	if _, err := pipeline.Restore(context.Background()); err != nil {
		logger.Warn("could not restore corpus: %v", err)
	}

	retriever := services.NewHybridRetriever(index, registry, embedder, domain.RetrievalWeights{
		Cosine:      cfg.Retrieval.CosineWeight,
		Keyword:     cfg.Retrieval.KeywordWeight,
		KeywordCap:  cfg.Retrieval.KeywordCap,
		HeaderBonus: cfg.Retrieval.HeaderBonus,
	})

	store, err := files.NewUploadStore(uploadsDir)
	if err != nil {
		return err
	}
	uploads := services.NewUploadLifecycle(index, registry, embedCache, store, corpusCache, pipeline)

	cli.Configure(pipeline, retriever, uploads, cfg.Paths.SeedDir)
	return cli.Execute()
}

// applyEnvOverrides lets the environment (or a .env file) override the
// embedding endpoint settings without editing config.toml.
func applyEnvOverrides(cfg *configfile.Config) {
	if v := os.Getenv("EMBEDDING_ENDPOINT"); v != "" {
		cfg.Embedding.Endpoint = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("CIP_AGENT_SEED_DIR"); v != "" {
		cfg.Paths.SeedDir = v
	}
}
