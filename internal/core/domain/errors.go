package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtraction indicates a document could not be read or its format
	// is unsupported. Fatal to that document's ingestion; nothing is
	// registered for it.
	ErrExtraction = errors.New("document extraction failed")

	// ErrEmbeddingService indicates the embedding service was unreachable
	// or returned a malformed response. Fatal to the affected batch.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrCacheIO indicates the embedding cache could not be persisted or
	// loaded. Non-fatal: in-memory operation continues degraded.
	ErrCacheIO = errors.New("embedding cache io failed")

	// ErrInvalidReference indicates removal was requested for an unknown
	// or unsafe document key. No mutation is attempted.
	ErrInvalidReference = errors.New("invalid document reference")
)
