// Package pdf provides a page-aware document reader for PDF files.
package pdf

import (
	"context"
	"fmt"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

// Reader extracts page-segmented text from PDF documents.
type Reader struct{}

// New creates a PDF reader.
func New() *Reader {
	return &Reader{}
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".pdf"}
}

// Read extracts text page by page. Pages that fail to decode are skipped
// with a warning; a document yielding no text at all is an extraction
// failure.
func (r *Reader) Read(ctx context.Context, path string) (*driven.Extraction, error) {
	f, doc, err := ledongthuc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf %s: %v", domain.ErrExtraction, path, err)
	}
	defer f.Close()

	var pages []domain.Page
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: read pdf %s: %v", domain.ErrExtraction, path, err)
		}

		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Skipping unreadable page %d of %s: %v", i, path, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, domain.Page{Number: i, Text: text})
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no extractable text in %s", domain.ErrExtraction, path)
	}

	return &driven.Extraction{Pages: pages}, nil
}
