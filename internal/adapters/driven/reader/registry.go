// Package reader dispatches document reads to the format-specific reader
// for the file's extension.
package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.DocumentReader = (*Registry)(nil)

// Registry routes Read calls by file extension. It implements
// driven.DocumentReader itself so the core sees one reader for all
// supported formats.
type Registry struct {
	byExtension map[string]driven.DocumentReader
}

// NewRegistry creates a registry over the given readers. A later reader
// claiming an already-registered extension wins.
func NewRegistry(readers ...driven.DocumentReader) *Registry {
	byExt := make(map[string]driven.DocumentReader)
	for _, r := range readers {
		for _, ext := range r.Extensions() {
			byExt[strings.ToLower(ext)] = r
		}
	}
	return &Registry{byExtension: byExt}
}

// Extensions returns all supported extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether the file at path has a registered reader.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExtension[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Read extracts the document at path with the reader registered for its
// extension. An unsupported extension is an extraction failure.
func (r *Registry) Read(ctx context.Context, path string) (*driven.Extraction, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrExtraction, ext)
	}
	return reader.Read(ctx, path)
}
