// Package corpus owns the authoritative in-memory collection of embedded
// chunks. The index is keyed by document, mutated only through whole-
// document operations, and read through snapshots so retrieval never sees a
// partially updated document.
package corpus

import (
	"sync"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

// Index holds chunks grouped by document key. All mutations are serialised
// behind a write lock; readers take consistent snapshots. The linear layout
// is the reference implementation — corpora past a few tens of thousands of
// chunks would want an ANN structure behind the same methods.
type Index struct {
	mu       sync.RWMutex
	byDoc    map[string][]domain.Chunk
	docOrder []string
}

// NewIndex creates an empty corpus index.
func NewIndex() *Index {
	return &Index{byDoc: make(map[string][]domain.Chunk)}
}

// Add stores the chunk set for a document key, replacing any previous set
// atomically (updates are remove-then-reinsert, never partial edits).
// An empty chunk set removes the document.
func (x *Index) Add(documentKey string, chunks []domain.Chunk) error {
	if documentKey == "" {
		return domain.ErrInvalidInput
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if len(chunks) == 0 {
		x.removeLocked(documentKey)
		return nil
	}

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	for i := range stored {
		stored[i].DocumentKey = documentKey
	}

	if _, exists := x.byDoc[documentKey]; !exists {
		x.docOrder = append(x.docOrder, documentKey)
	}
	x.byDoc[documentKey] = stored
	return nil
}

// RemoveDocument removes every chunk belonging to documentKey and returns
// the number removed. Removing an unknown key removes nothing.
func (x *Index) RemoveDocument(documentKey string) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.removeLocked(documentKey)
}

func (x *Index) removeLocked(documentKey string) int {
	chunks, ok := x.byDoc[documentKey]
	if !ok {
		return 0
	}
	delete(x.byDoc, documentKey)
	for i, key := range x.docOrder {
		if key == documentKey {
			x.docOrder = append(x.docOrder[:i], x.docOrder[i+1:]...)
			break
		}
	}
	return len(chunks)
}

// RebuildOrigin atomically replaces every chunk whose origin matches the
// given tag with the provided chunks. Documents of other origins are left
// untouched. Used to refresh the batch-seeded corpus without disturbing
// separately managed uploads.
func (x *Index) RebuildOrigin(origin domain.Origin, chunks []domain.Chunk) {
	x.mu.Lock()
	defer x.mu.Unlock()

	// Drop all documents of this origin.
	for _, key := range append([]string(nil), x.docOrder...) {
		existing := x.byDoc[key]
		if len(existing) > 0 && existing[0].Origin == origin {
			x.removeLocked(key)
		}
	}

	// Re-add grouped by document, preserving order of appearance.
	for _, chunk := range chunks {
		key := chunk.DocumentKey
		if key == "" {
			continue
		}
		chunk.Origin = origin
		if _, exists := x.byDoc[key]; !exists {
			x.docOrder = append(x.docOrder, key)
		}
		x.byDoc[key] = append(x.byDoc[key], chunk)
	}
}

// All returns a snapshot of every chunk, in document insertion order and
// intra-document sequence order. The returned slice is a copy; concurrent
// mutations never become visible through it.
func (x *Index) All() []domain.Chunk {
	x.mu.RLock()
	defer x.mu.RUnlock()

	total := 0
	for _, chunks := range x.byDoc {
		total += len(chunks)
	}

	snapshot := make([]domain.Chunk, 0, total)
	for _, key := range x.docOrder {
		snapshot = append(snapshot, x.byDoc[key]...)
	}
	return snapshot
}

// Document returns the chunk set for one document key.
func (x *Index) Document(documentKey string) ([]domain.Chunk, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	chunks, ok := x.byDoc[documentKey]
	if !ok {
		return nil, false
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, true
}

// Documents returns the known document keys in insertion order.
func (x *Index) Documents() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.docOrder...)
}

// Count returns the total number of chunks in the index.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	total := 0
	for _, chunks := range x.byDoc {
		total += len(chunks)
	}
	return total
}
