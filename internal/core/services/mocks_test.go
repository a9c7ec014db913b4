package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
)

// stubEmbedder implements driven.EmbeddingService with a per-test embed
// function and records every input it was asked to embed.
type stubEmbedder struct {
	mu      sync.Mutex
	embedFn func(text string) ([]float32, error)
	inputs  []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, text)
	s.mu.Unlock()
	return s.embedFn(text)
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int { return 3 }
func (s *stubEmbedder) Close() error    { return nil }

func (s *stubEmbedder) embedded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}

// stubReader implements driven.DocumentReader from a map of base filename
// to extraction.
type stubReader struct {
	docs map[string]*driven.Extraction
	err  error
}

func (r *stubReader) Extensions() []string { return []string{".pdf", ".txt"} }

func (r *stubReader) Read(_ context.Context, path string) (*driven.Extraction, error) {
	if r.err != nil {
		return nil, r.err
	}
	extraction, ok := r.docs[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: no text in %s", domain.ErrExtraction, path)
	}
	return extraction, nil
}

// stubCorpusCache implements driven.CorpusCache in memory and records the
// mutations it saw.
type stubCorpusCache struct {
	saved   map[string][]domain.Chunk
	deleted []string
	loadErr error
	saveErr error
}

func newStubCorpusCache() *stubCorpusCache {
	return &stubCorpusCache{saved: make(map[string][]domain.Chunk)}
}

func (c *stubCorpusCache) SaveDocument(_ context.Context, documentKey string, chunks []domain.Chunk) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved[documentKey] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (c *stubCorpusCache) DeleteDocument(_ context.Context, documentKey string) error {
	c.deleted = append(c.deleted, documentKey)
	delete(c.saved, documentKey)
	return nil
}

func (c *stubCorpusCache) DeleteOrigin(_ context.Context, origin domain.Origin) error {
	for key, chunks := range c.saved {
		if len(chunks) > 0 && chunks[0].Origin == origin {
			delete(c.saved, key)
			c.deleted = append(c.deleted, key)
		}
	}
	return nil
}

func (c *stubCorpusCache) LoadAll(_ context.Context) ([]domain.Chunk, error) {
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	var all []domain.Chunk
	for _, chunks := range c.saved {
		all = append(all, chunks...)
	}
	return all, nil
}

func (c *stubCorpusCache) Close() error { return nil }

// stubUploadStore implements driven.UploadStore in memory.
type stubUploadStore struct {
	stored  map[string]struct{}
	removed []string
	addErr  error
}

func newStubUploadStore() *stubUploadStore {
	return &stubUploadStore{stored: make(map[string]struct{})}
}

func (s *stubUploadStore) Add(srcPath string) (string, error) {
	if s.addErr != nil {
		return "", s.addErr
	}
	name := filepath.Base(srcPath)
	s.stored[name] = struct{}{}
	return name, nil
}

func (s *stubUploadStore) Path(storedName string) string {
	return filepath.Join("/uploads", storedName)
}

func (s *stubUploadStore) Remove(storedName string) error {
	s.removed = append(s.removed, storedName)
	delete(s.stored, storedName)
	return nil
}

// stubIngestor implements driving.Ingestor with canned results.
type stubIngestor struct {
	mu        sync.Mutex
	result    domain.IngestResult
	err       error
	refs      []domain.DocumentRef
	seedCalls int
}

func (s *stubIngestor) Ingest(_ context.Context, ref domain.DocumentRef) (domain.IngestResult, error) {
	s.mu.Lock()
	s.refs = append(s.refs, ref)
	s.mu.Unlock()
	if s.err != nil {
		return domain.IngestResult{}, s.err
	}
	return s.result, nil
}

func (s *stubIngestor) SeedDirectory(_ context.Context, _ string) ([]domain.IngestResult, error) {
	s.mu.Lock()
	s.seedCalls++
	s.mu.Unlock()
	return nil, nil
}

func (s *stubIngestor) seedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedCalls
}
