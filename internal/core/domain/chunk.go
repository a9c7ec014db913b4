package domain

import "strconv"

// Origin tags the provenance of a document's chunks. Seeded documents come
// from the reference corpus directory and can be rebuilt as a batch;
// uploaded documents are managed individually.
type Origin string

const (
	// OriginSeeded marks chunks from the batch-seeded reference corpus.
	OriginSeeded Origin = "seeded"

	// OriginUploaded marks chunks from user-uploaded documents.
	OriginUploaded Origin = "uploaded"
)

// StandardRef identifies a versioned NERC CIP standard.
type StandardRef struct {
	// Base is the family identifier, e.g. "CIP-005".
	Base string

	// Version is the numeric standard version, e.g. 6 for CIP-005-6.
	Version int
}

// VersionedID returns the fully qualified identifier, e.g. "CIP-005-6".
func (r StandardRef) VersionedID() string {
	if r.Base == "" {
		return ""
	}
	if r.Version <= 0 {
		return r.Base
	}
	return r.Base + "-" + strconv.Itoa(r.Version)
}

// Chunk is the unit of retrievable text: a bounded span of document content
// plus its embedding and citation metadata. A Chunk is immutable once
// created; updating a document is modeled as remove-then-reinsert of all
// chunks under its DocumentKey.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the whitespace-normalised chunk content as shown to callers.
	Text string

	// Embedding is the vector representation for semantic search.
	// Dimensionality is fixed per embedding model.
	Embedding []float32

	// SourceLabel is the human-readable document+page identifier,
	// e.g. "CIP-005-6.pdf (page 4)".
	SourceLabel string

	// Locator is an addressable reference for citation,
	// e.g. "docs/CIP-005-6.pdf#page=4".
	Locator string

	// Origin records whether the owning document was seeded or uploaded.
	Origin Origin

	// DocumentKey is the stable identifier of the owning document.
	DocumentKey string

	// Page is the 1-based page number, 0 when the source is not paged.
	Page int

	// SequenceIndex orders chunks within a page.
	SequenceIndex int

	// Standard is set when the owning document is a recognised versioned
	// standard; zero value otherwise.
	Standard StandardRef
}

// Page is a page-segmented slice of extracted document text, produced by a
// DocumentReader.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the raw extracted text for the page.
	Text string
}

// DocumentRef identifies a document handed to the ingestion pipeline.
type DocumentRef struct {
	// Path is the filesystem location of the document.
	Path string

	// Key is the stable document key; defaults to the base filename.
	Key string

	// Origin is the provenance tag for the produced chunks.
	Origin Origin
}

// IngestResult reports the outcome of ingesting one document.
type IngestResult struct {
	// DocumentKey is the key the chunks were stored under.
	DocumentKey string

	// ChunkCount is the number of chunks added to the corpus.
	ChunkCount int

	// PagesSkipped counts pages dropped because their embedding batch failed.
	PagesSkipped int
}
