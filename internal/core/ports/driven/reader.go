package driven

import (
	"context"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

// Extraction is the text pulled out of a document. Readers either fill
// Pages (page-aware path) or Text alone (fast path for unpaged formats).
type Extraction struct {
	// Text is the full document text when the format has no page structure.
	Text string

	// Pages is the page-segmented text, in page order.
	Pages []domain.Page
}

// DocumentReader extracts text from one document format. The core only
// consumes this contract; parsing lives in adapters.
type DocumentReader interface {
	// Extensions returns the lower-case file extensions the reader handles,
	// including the leading dot.
	Extensions() []string

	// Read extracts the document at path.
	Read(ctx context.Context, path string) (*Extraction, error)
}
