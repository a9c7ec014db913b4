package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/corpus"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driving"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/standards"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// Ensure HybridRetriever implements the interface.
var _ driving.Retriever = (*HybridRetriever)(nil)

// sourceMatchBonus is added to the raw keyword score when the query
// literally names the chunk's document or source label.
const sourceMatchBonus = 2

// HybridRetriever ranks corpus chunks by a blend of embedding similarity
// and CIP keyword signal. Compliance queries lean heavily on exact
// identifiers ("CIP-007-6 R2"), which pure vector similarity under-ranks,
// so the keyword term keeps literal mentions competitive.
type HybridRetriever struct {
	index    *corpus.Index
	registry *standards.Registry
	embedder driven.EmbeddingService
	weights  domain.RetrievalWeights
}

// NewHybridRetriever creates the retriever. Zero-valued weights fall back
// to the defaults.
func NewHybridRetriever(index *corpus.Index, registry *standards.Registry, embedder driven.EmbeddingService, weights domain.RetrievalWeights) *HybridRetriever {
	if weights == (domain.RetrievalWeights{}) {
		weights = domain.DefaultRetrievalWeights()
	}
	return &HybridRetriever{
		index:    index,
		registry: registry,
		embedder: embedder,
		weights:  weights,
	}
}

type scoredChunk struct {
	chunk   *domain.Chunk
	score   float64
	keyword float64
}

// Retrieve returns up to k citations for the query, most relevant first.
// The query is embedded fresh on every call; if the embedding service is
// unavailable the ranking degrades to keyword-only rather than failing.
func (s *HybridRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Citation, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return nil, domain.ErrInvalidInput
	}

	chunks := s.index.All()
	if len(chunks) == 0 {
		return []domain.Citation{}, nil
	}

	normalised := s.registry.NormalizeQuery(query)
	if normalised != query {
		logger.Debug("query normalised to %q", normalised)
	}

	queryVec, err := s.embedder.Embed(ctx, normalised)
	if err != nil {
		logger.Warn("query embedding unavailable, ranking by keywords only: %v", err)
		queryVec = nil
	}

	identifiers := standards.Identifiers(normalised)
	headerTokens := standards.RequirementTokens(normalised)
	queryLower := strings.ToLower(normalised)

	scored := make([]scoredChunk, len(chunks))
	for i := range chunks {
		scored[i] = s.score(&chunks[i], queryVec, queryLower, identifiers, headerTokens)
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})

	top := scored
	if len(top) > k {
		top = top[:k]
	}
	for len(top) > 0 && top[len(top)-1].score <= 0 {
		top = top[:len(top)-1]
	}

	// When the query names a standard but vector similarity surfaced
	// nothing that mentions it, fall back to a literal scan so an exact
	// identifier always finds its text.
	if len(identifiers) > 0 && noKeywordSignal(top) {
		if literal := s.literalMatches(scored, identifiers); len(literal) > 0 {
			top = literal
			if len(top) > k {
				top = top[:k]
			}
		}
	}

	return dedupe(top, k), nil
}

// score computes the blended relevance of one chunk.
func (s *HybridRetriever) score(chunk *domain.Chunk, queryVec []float32, queryLower string, identifiers, headerTokens []string) scoredChunk {
	textLower := strings.ToLower(chunk.Text)

	var keyword float64
	for _, id := range identifiers {
		if strings.Contains(textLower, strings.ToLower(id)) {
			keyword++
		}
	}
	for _, token := range headerTokens {
		if strings.Contains(textLower, strings.ToLower(token)) {
			keyword += s.weights.HeaderBonus
			break
		}
	}
	if chunk.DocumentKey != "" && strings.Contains(queryLower, strings.ToLower(chunk.DocumentKey)) {
		keyword += sourceMatchBonus
	}
	if chunk.SourceLabel != "" && strings.Contains(queryLower, strings.ToLower(chunk.SourceLabel)) {
		keyword += sourceMatchBonus
	}

	blended := s.weights.Cosine*cosineSimilarity(queryVec, chunk.Embedding) +
		s.weights.Keyword*math.Min(keyword, s.weights.KeywordCap)

	return scoredChunk{chunk: chunk, score: blended, keyword: keyword}
}

// literalMatches returns, in rank order, every scored chunk whose text
// contains one of the query identifiers verbatim.
func (s *HybridRetriever) literalMatches(scored []scoredChunk, identifiers []string) []scoredChunk {
	var matches []scoredChunk
	for i := range scored {
		textLower := strings.ToLower(scored[i].chunk.Text)
		for _, id := range identifiers {
			if strings.Contains(textLower, strings.ToLower(id)) {
				matches = append(matches, scored[i])
				break
			}
		}
	}
	return matches
}

func noKeywordSignal(scored []scoredChunk) bool {
	for i := range scored {
		if scored[i].keyword > 0 {
			return false
		}
	}
	return true
}

// dedupe collapses chunks sharing a source label and locator, keeping the
// highest-ranked occurrence, and caps the result at k citations.
func dedupe(scored []scoredChunk, k int) []domain.Citation {
	type sourceKey struct {
		label   string
		locator string
	}

	citations := make([]domain.Citation, 0, len(scored))
	seen := make(map[sourceKey]struct{}, len(scored))
	for i := range scored {
		chunk := scored[i].chunk
		key := sourceKey{label: chunk.SourceLabel, locator: chunk.Locator}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		citations = append(citations, domain.Citation{
			Text:        chunk.Text,
			SourceLabel: chunk.SourceLabel,
			Locator:     chunk.Locator,
			Score:       scored[i].score,
		})
		if len(citations) == k {
			break
		}
	}
	return citations
}

// cosineSimilarity returns the cosine of the angle between two vectors, or
// 0 when either vector is absent, mismatched, or zero-norm.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
