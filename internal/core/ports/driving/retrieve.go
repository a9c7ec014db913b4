package driving

import (
	"context"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

// Retriever ranks corpus chunks against a query.
type Retriever interface {
	// Retrieve returns up to k citations, most relevant first. An empty
	// corpus or a query with no matches yields an empty slice, not an
	// error.
	Retrieve(ctx context.Context, query string, k int) ([]domain.Citation, error)
}
