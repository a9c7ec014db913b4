package driven

import (
	"context"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

// CorpusCache persists embedded chunks so the in-memory corpus index can be
// restored on startup without re-reading or re-embedding documents.
// Failures are treated as degradation, never as ingestion failures.
type CorpusCache interface {
	// SaveDocument stores the chunk set for a document key, replacing any
	// previous set.
	SaveDocument(ctx context.Context, documentKey string, chunks []domain.Chunk) error

	// DeleteDocument removes the chunk set for a document key.
	DeleteDocument(ctx context.Context, documentKey string) error

	// DeleteOrigin removes every chunk with the given origin tag.
	DeleteOrigin(ctx context.Context, origin domain.Origin) error

	// LoadAll returns every persisted chunk in document, page, and
	// sequence order.
	LoadAll(ctx context.Context) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}
