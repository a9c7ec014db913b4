// Package plaintext provides the fast-path document reader for unpaged
// text formats.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

// Reader reads whole text files.
type Reader struct{}

// New creates a plaintext reader.
func New() *Reader {
	return &Reader{}
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".txt", ".md"}
}

// Read returns the full file content as a single unpaged text.
func (r *Reader) Read(_ context.Context, path string) (*driven.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, path, err)
	}
	return &driven.Extraction{Text: string(data)}, nil
}
