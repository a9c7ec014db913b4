package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/chunker"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/corpus"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driving"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/standards"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/embedcache"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.Ingestor = (*IngestionPipeline)(nil)

// PipelineConfig carries the collaborators an IngestionPipeline needs.
// CorpusCache is optional; a nil cache disables persistence but never
// fails ingestion.
type PipelineConfig struct {
	Reader      driven.DocumentReader
	Embedder    driven.EmbeddingService
	Index       *corpus.Index
	Registry    *standards.Registry
	EmbedCache  *embedcache.Cache
	CorpusCache driven.CorpusCache
	Chunker     *chunker.Chunker
}

// IngestionPipeline turns documents into embedded chunks in the corpus
// index: extract, register, chunk, embed (cache-first), index, persist.
type IngestionPipeline struct {
	reader      driven.DocumentReader
	embedder    driven.EmbeddingService
	index       *corpus.Index
	registry    *standards.Registry
	embedCache  *embedcache.Cache
	corpusCache driven.CorpusCache
	chunker     *chunker.Chunker
}

// NewIngestionPipeline creates the pipeline. A nil Chunker gets the
// default chunking parameters.
func NewIngestionPipeline(cfg PipelineConfig) *IngestionPipeline {
	if cfg.Chunker == nil {
		cfg.Chunker = chunker.New()
	}
	return &IngestionPipeline{
		reader:      cfg.Reader,
		embedder:    cfg.Embedder,
		index:       cfg.Index,
		registry:    cfg.Registry,
		embedCache:  cfg.EmbedCache,
		corpusCache: cfg.CorpusCache,
		chunker:     cfg.Chunker,
	}
}

// Ingest processes one document end to end. A document that cannot be read
// leaves no trace anywhere; a page whose embedding batch fails is skipped
// and counted while the rest of the document proceeds. Chunks reach the
// index only after every surviving page has resolved, so a concurrent
// search never sees a half-ingested document.
func (p *IngestionPipeline) Ingest(ctx context.Context, ref domain.DocumentRef) (domain.IngestResult, error) {
	key := ref.Key
	if key == "" {
		key = filepath.Base(ref.Path)
	}
	if !domain.ValidDocumentKey(key) {
		return domain.IngestResult{}, fmt.Errorf("%w: document key %q", domain.ErrInvalidReference, key)
	}

	extraction, err := p.reader.Read(ctx, ref.Path)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("ingesting %s: %w", key, err)
	}

	pages := extraction.Pages
	if len(pages) == 0 && strings.TrimSpace(extraction.Text) != "" {
		// Unpaged fast path: treat the whole document as page 0.
		pages = []domain.Page{{Number: 0, Text: extraction.Text}}
	}
	if len(pages) == 0 {
		return domain.IngestResult{}, fmt.Errorf("%w: no usable text in %s", domain.ErrExtraction, key)
	}

	_, existed := p.index.Document(key)
	std, isStandard := p.registry.Register(key)

	// The alias header rides along in the embed input only, so semantic
	// search associates the passage with both the family and the exact
	// version without polluting the text shown to callers.
	var aliasPrefix string
	if isStandard {
		aliasPrefix = std.Base + " " + std.VersionedID() + "\n"
	}

	var chunks []domain.Chunk
	var pagesSkipped int

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			if !existed {
				p.registry.Remove(key)
			}
			return domain.IngestResult{}, err
		}

		passages := p.chunker.Chunk(page.Text)
		if len(passages) == 0 {
			continue
		}

		vectors, err := p.resolveEmbeddings(ctx, aliasPrefix, passages)
		if err != nil {
			logger.Warn("skipping page %d of %s: %v", page.Number, key, err)
			pagesSkipped++
			continue
		}

		for i, passage := range passages {
			chunk := domain.Chunk{
				ID:            uuid.New().String(),
				Text:          passage,
				Embedding:     vectors[i],
				SourceLabel:   sourceLabel(key, page.Number),
				Locator:       locator(key, page.Number),
				Origin:        ref.Origin,
				DocumentKey:   key,
				Page:          page.Number,
				SequenceIndex: i,
			}
			if isStandard {
				chunk.Standard = std
			}
			chunks = append(chunks, chunk)
		}
	}

	if len(chunks) == 0 {
		if !existed {
			p.registry.Remove(key)
		}
		if pagesSkipped > 0 {
			return domain.IngestResult{}, fmt.Errorf("%w: every page of %s failed to embed", domain.ErrEmbeddingService, key)
		}
		return domain.IngestResult{}, fmt.Errorf("%w: no usable text in %s", domain.ErrExtraction, key)
	}

	if err := p.index.Add(key, chunks); err != nil {
		if !existed {
			p.registry.Remove(key)
		}
		return domain.IngestResult{}, fmt.Errorf("indexing %s: %w", key, err)
	}

	p.persistDocument(ctx, key, chunks)
	p.persistEmbedCache()

	logger.Info("ingested %s: %d chunks, %d pages skipped", key, len(chunks), pagesSkipped)
	return domain.IngestResult{
		DocumentKey:  key,
		ChunkCount:   len(chunks),
		PagesSkipped: pagesSkipped,
	}, nil
}

// resolveEmbeddings returns one vector per passage, consulting the
// embedding cache first and batch-embedding only the misses.
func (p *IngestionPipeline) resolveEmbeddings(ctx context.Context, aliasPrefix string, passages []string) ([][]float32, error) {
	vectors := make([][]float32, len(passages))

	var missTexts []string
	var missIndex []int
	for i, passage := range passages {
		embedText := aliasPrefix + passage
		if vec, ok := p.embedCache.Get(embedText); ok {
			vectors[i] = vec
			continue
		}
		missTexts = append(missTexts, embedText)
		missIndex = append(missIndex, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := p.embedder.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range embedded {
		vectors[missIndex[j]] = vec
		p.embedCache.Put(missTexts[j], vec)
	}
	return vectors, nil
}

// SeedDirectory ingests every supported file in dir with origin seeded and
// drops previously seeded documents whose files are gone, so the seeded
// part of the corpus mirrors the directory. Per-file failures are logged
// and skipped; the rest of the directory proceeds.
func (p *IngestionPipeline) SeedDirectory(ctx context.Context, dir string) ([]domain.IngestResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading seed directory: %w", err)
	}

	supported := make(map[string]struct{})
	for _, ext := range p.reader.Extensions() {
		supported[ext] = struct{}{}
	}

	logger.Section("seeding corpus")

	var results []domain.IngestResult
	seeded := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := supported[ext]; !ok {
			logger.Debug("skipping unsupported file %s", entry.Name())
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := p.Ingest(ctx, domain.DocumentRef{
			Path:   filepath.Join(dir, entry.Name()),
			Key:    entry.Name(),
			Origin: domain.OriginSeeded,
		})
		if err != nil {
			logger.Warn("seed skipped %s: %v", entry.Name(), err)
			continue
		}
		results = append(results, result)
		seeded[result.DocumentKey] = struct{}{}
	}

	p.pruneSeeded(ctx, seeded)
	return results, nil
}

// pruneSeeded removes seeded documents that were not part of the latest
// seed pass.
func (p *IngestionPipeline) pruneSeeded(ctx context.Context, keep map[string]struct{}) {
	for _, key := range p.index.Documents() {
		if _, kept := keep[key]; kept {
			continue
		}
		doc, ok := p.index.Document(key)
		if !ok || len(doc) == 0 || doc[0].Origin != domain.OriginSeeded {
			continue
		}

		removed := p.index.RemoveDocument(key)
		p.registry.Remove(key)
		if p.corpusCache != nil {
			if err := p.corpusCache.DeleteDocument(ctx, key); err != nil {
				logger.Warn("corpus cache delete failed for %s: %v", key, err)
			}
		}
		logger.Info("pruned seeded document %s (%d chunks)", key, removed)
	}
}

// Restore rebuilds the in-memory index and standards registry from the
// corpus cache, returning the number of restored chunks. Called once at
// startup so previously ingested documents survive restarts without
// re-reading or re-embedding anything.
func (p *IngestionPipeline) Restore(ctx context.Context) (int, error) {
	if p.corpusCache == nil {
		return 0, nil
	}

	chunks, err := p.corpusCache.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("restoring corpus: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	byDoc := make(map[string][]domain.Chunk)
	var order []string
	for _, chunk := range chunks {
		if _, seen := byDoc[chunk.DocumentKey]; !seen {
			order = append(order, chunk.DocumentKey)
		}
		byDoc[chunk.DocumentKey] = append(byDoc[chunk.DocumentKey], chunk)
	}

	restored := 0
	for _, key := range order {
		doc := byDoc[key]
		sort.SliceStable(doc, func(a, b int) bool {
			if doc[a].Page != doc[b].Page {
				return doc[a].Page < doc[b].Page
			}
			return doc[a].SequenceIndex < doc[b].SequenceIndex
		})
		if err := p.index.Add(key, doc); err != nil {
			logger.Warn("restore skipped %s: %v", key, err)
			continue
		}
		p.registry.Register(key)
		restored += len(doc)
	}

	logger.Info("restored %d chunks across %d documents", restored, len(order))
	return restored, nil
}

// persistDocument writes the chunk set to the corpus cache. Persistence is
// a restart optimisation, so failure degrades rather than fails ingestion.
func (p *IngestionPipeline) persistDocument(ctx context.Context, key string, chunks []domain.Chunk) {
	if p.corpusCache == nil {
		return
	}
	if err := p.corpusCache.SaveDocument(ctx, key, chunks); err != nil {
		logger.Warn("corpus cache save failed for %s: %v", key, err)
	}
}

func (p *IngestionPipeline) persistEmbedCache() {
	if err := p.embedCache.Persist(); err != nil {
		logger.Warn("embedding cache persist failed: %v", err)
	}
}

// sourceLabel builds the human-readable citation label for a chunk.
func sourceLabel(key string, page int) string {
	if page <= 0 {
		return key
	}
	return fmt.Sprintf("%s (page %d)", key, page)
}

// locator builds the addressable citation reference for a chunk.
func locator(key string, page int) string {
	if page <= 0 {
		return key
	}
	return fmt.Sprintf("%s#page=%d", key, page)
}
