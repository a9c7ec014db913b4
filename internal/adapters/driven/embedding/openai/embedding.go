// Package openai provides an embedding service adapter for OpenAI-style
// HTTP embedding APIs. Compatible services disagree on the response shape,
// so the adapter accepts the three known variants explicitly and treats
// anything else as a hard failure rather than defaulting to a zero vector.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultEndpoint    = "http://localhost:11434/api/embeddings"
	DefaultModel       = "nomic-embed-text"
	DefaultDimensions  = 768
	DefaultTimeout     = 60 * time.Second
	DefaultConcurrency = 4
	DefaultRate        = 8 // requests per second
)

// Config holds configuration for the embedding service.
type Config struct {
	// Endpoint is the full URL of the embeddings endpoint, e.g.
	// http://localhost:11434/api/embeddings or
	// https://api.openai.com/v1/embeddings.
	Endpoint string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Model is the embedding model name.
	Model string

	// Dimensions is the expected vector size.
	Dimensions int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Concurrency bounds the parallel in-flight requests of one batch.
	Concurrency int

	// RequestsPerSecond paces requests to the service. Zero uses the
	// default; negative disables pacing.
	RequestsPerSecond float64
}

// EmbeddingService calls an external embedding service, one request per
// text, fanned out concurrently within a batch.
type EmbeddingService struct {
	client      *http.Client
	limiter     *rate.Limiter
	endpoint    string
	apiKey      string
	model       string
	dimensions  int
	concurrency int
}

// embeddingRequest is the wire request: one text per call.
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// NewEmbeddingService creates an embedding service from config, applying
// defaults for unset fields.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond >= 0 {
		rps := cfg.RequestsPerSecond
		if rps == 0 {
			rps = DefaultRate
		}
		limiter = rate.NewLimiter(rate.Limit(rps), cfg.Concurrency)
	}

	return &EmbeddingService{
		client:      &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		concurrency: cfg.Concurrency,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate wait: %v", domain.ErrEmbeddingService, err)
		}
	}

	reqBody, err := json.Marshal(embeddingRequest{Model: s.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", domain.ErrEmbeddingService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrEmbeddingService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", domain.ErrEmbeddingService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrEmbeddingService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingService, resp.StatusCode, truncate(body, 200))
	}

	vector, err := parseVector(body)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// EmbedBatch embeds each text with bounded concurrency, preserving input
// order. A failure for any text fails the whole batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	sem := make(chan struct{}, s.concurrency)

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			vectors[i], errs[i] = s.Embed(ctx, text)
		}(i, text)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}

	logger.Debug("Embedded batch of %d texts (%d dims)", len(texts), len(vectors[0]))
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// objectShape covers `{"embedding":[...]}` and `{"embeddings":[[...]]}`.
type objectShape struct {
	Embedding  []float32   `json:"embedding"`
	Embeddings [][]float32 `json:"embeddings"`
}

// listShape covers `[{"embedding":[...]}]`.
type listShape []struct {
	Embedding []float32 `json:"embedding"`
}

// parseVector extracts the vector from a response body. The known shapes
// are matched explicitly and exhaustively; a body fitting none of them, or
// carrying an empty vector, is a hard failure.
func parseVector(body []byte) ([]float32, error) {
	var obj objectShape
	if err := json.Unmarshal(body, &obj); err == nil {
		if len(obj.Embedding) > 0 {
			return obj.Embedding, nil
		}
		if len(obj.Embeddings) > 0 && len(obj.Embeddings[0]) > 0 {
			return obj.Embeddings[0], nil
		}
	}

	var list listShape
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) > 0 && len(list[0].Embedding) > 0 {
			return list[0].Embedding, nil
		}
	}

	return nil, fmt.Errorf("%w: response matches no known embedding shape: %s",
		domain.ErrEmbeddingService, truncate(body, 200))
}

// truncate bounds response bodies quoted in error messages.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
