package driving

import (
	"context"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

// Ingestor turns documents into embedded chunks in the corpus.
type Ingestor interface {
	// Ingest processes one document end to end and reports the chunk count
	// stored under its key.
	Ingest(ctx context.Context, ref domain.DocumentRef) (domain.IngestResult, error)

	// SeedDirectory ingests every readable document in dir with origin
	// seeded, replacing the previously seeded corpus.
	SeedDirectory(ctx context.Context, dir string) ([]domain.IngestResult, error)
}

// UploadManager owns the lifecycle of uploaded documents.
type UploadManager interface {
	// Remove deletes an uploaded document: its chunks, its registry entry,
	// and its stored file. Returns the removed chunk count.
	Remove(documentKey string) (int, error)
}
