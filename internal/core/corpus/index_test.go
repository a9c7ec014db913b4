package corpus

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

func makeChunks(docKey string, origin domain.Origin, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:            fmt.Sprintf("%s-%d", docKey, i),
			Text:          fmt.Sprintf("chunk %d of %s", i, docKey),
			DocumentKey:   docKey,
			Origin:        origin,
			SequenceIndex: i,
		}
	}
	return chunks
}

func TestIndex_AddAndAll(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Add("CIP-005-6.pdf", makeChunks("CIP-005-6.pdf", domain.OriginSeeded, 3)))
	require.NoError(t, x.Add("upload.pdf", makeChunks("upload.pdf", domain.OriginUploaded, 2)))

	all := x.All()
	require.Len(t, all, 5)
	assert.Equal(t, 5, x.Count())

	// Document insertion order, then sequence order within a document.
	assert.Equal(t, "CIP-005-6.pdf", all[0].DocumentKey)
	assert.Equal(t, 0, all[0].SequenceIndex)
	assert.Equal(t, "CIP-005-6.pdf", all[2].DocumentKey)
	assert.Equal(t, "upload.pdf", all[3].DocumentKey)
}

func TestIndex_AddEmptyKey(t *testing.T) {
	x := NewIndex()
	assert.ErrorIs(t, x.Add("", makeChunks("x", domain.OriginSeeded, 1)), domain.ErrInvalidInput)
}

func TestIndex_AddReplacesDocument(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Add("doc.pdf", makeChunks("doc.pdf", domain.OriginUploaded, 4)))
	require.NoError(t, x.Add("doc.pdf", makeChunks("doc.pdf", domain.OriginUploaded, 2)))

	assert.Equal(t, 2, x.Count())
	chunks, ok := x.Document("doc.pdf")
	require.True(t, ok)
	assert.Len(t, chunks, 2)
}

func TestIndex_RemoveDocument(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Add("a.pdf", makeChunks("a.pdf", domain.OriginSeeded, 3)))
	require.NoError(t, x.Add("b.pdf", makeChunks("b.pdf", domain.OriginSeeded, 2)))

	removed := x.RemoveDocument("a.pdf")
	assert.Equal(t, 3, removed)

	// Atomic: no chunk with the removed key survives.
	for _, chunk := range x.All() {
		assert.NotEqual(t, "a.pdf", chunk.DocumentKey)
	}
	assert.Equal(t, []string{"b.pdf"}, x.Documents())

	assert.Equal(t, 0, x.RemoveDocument("a.pdf"), "second removal removes nothing")
	assert.Equal(t, 0, x.RemoveDocument("unknown.pdf"))
}

func TestIndex_RebuildOrigin(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Add("seed-a.pdf", makeChunks("seed-a.pdf", domain.OriginSeeded, 2)))
	require.NoError(t, x.Add("upload.pdf", makeChunks("upload.pdf", domain.OriginUploaded, 2)))
	require.NoError(t, x.Add("seed-b.pdf", makeChunks("seed-b.pdf", domain.OriginSeeded, 2)))

	replacement := makeChunks("seed-c.pdf", domain.OriginSeeded, 3)
	x.RebuildOrigin(domain.OriginSeeded, replacement)

	assert.Equal(t, 5, x.Count())
	keys := x.Documents()
	assert.Contains(t, keys, "upload.pdf")
	assert.Contains(t, keys, "seed-c.pdf")
	assert.NotContains(t, keys, "seed-a.pdf")
	assert.NotContains(t, keys, "seed-b.pdf")

	// Uploads were not disturbed.
	chunks, ok := x.Document("upload.pdf")
	require.True(t, ok)
	assert.Len(t, chunks, 2)
}

func TestIndex_AllReturnsSnapshot(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Add("doc.pdf", makeChunks("doc.pdf", domain.OriginSeeded, 2)))

	snapshot := x.All()
	x.RemoveDocument("doc.pdf")

	// The earlier snapshot is unaffected by the mutation.
	assert.Len(t, snapshot, 2)
	assert.Equal(t, 0, x.Count())
}

func TestIndex_ConcurrentReadsAndWrites(t *testing.T) {
	x := NewIndex()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		key := fmt.Sprintf("doc-%d.pdf", i)
		go func() {
			defer wg.Done()
			_ = x.Add(key, makeChunks(key, domain.OriginSeeded, 5))
		}()
		go func() {
			defer wg.Done()
			for _, chunk := range x.All() {
				// Every visible chunk belongs to a fully added document.
				chunks, ok := x.Document(chunk.DocumentKey)
				if ok && len(chunks) != 5 {
					t.Errorf("partial document visible: %d chunks", len(chunks))
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, x.Count())
}
