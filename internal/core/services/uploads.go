package services

import (
	"context"
	"fmt"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/corpus"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driving"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/standards"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/embedcache"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// Ensure UploadLifecycle implements the interface.
var _ driving.UploadManager = (*UploadLifecycle)(nil)

// UploadLifecycle owns uploaded documents end to end: storing the raw
// file, ingesting it, and tearing everything down again on removal.
type UploadLifecycle struct {
	index       *corpus.Index
	registry    *standards.Registry
	embedCache  *embedcache.Cache
	store       driven.UploadStore
	corpusCache driven.CorpusCache
	ingestor    driving.Ingestor
}

// NewUploadLifecycle creates the lifecycle service. CorpusCache may be nil.
func NewUploadLifecycle(index *corpus.Index, registry *standards.Registry, embedCache *embedcache.Cache, store driven.UploadStore, corpusCache driven.CorpusCache, ingestor driving.Ingestor) *UploadLifecycle {
	return &UploadLifecycle{
		index:       index,
		registry:    registry,
		embedCache:  embedCache,
		store:       store,
		corpusCache: corpusCache,
		ingestor:    ingestor,
	}
}

// Upload copies the file into the upload store and ingests it with origin
// uploaded. A failed ingestion removes the stored copy so no orphan file
// is left behind.
func (u *UploadLifecycle) Upload(ctx context.Context, srcPath string) (domain.IngestResult, error) {
	storedName, err := u.store.Add(srcPath)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("storing upload: %w", err)
	}

	result, err := u.ingestor.Ingest(ctx, domain.DocumentRef{
		Path:   u.store.Path(storedName),
		Key:    storedName,
		Origin: domain.OriginUploaded,
	})
	if err != nil {
		if removeErr := u.store.Remove(storedName); removeErr != nil {
			logger.Warn("could not clean up stored file %s: %v", storedName, removeErr)
		}
		return domain.IngestResult{}, err
	}

	return result, nil
}

// Remove deletes an uploaded document: its chunks, its standards registry
// backing, its persisted chunk set, and its stored file. An invalid key is
// rejected and an unknown key reported with domain.ErrNotFound, in both
// cases before anything is touched. Returns the removed chunk count.
func (u *UploadLifecycle) Remove(documentKey string) (int, error) {
	if !domain.ValidDocumentKey(documentKey) {
		return 0, fmt.Errorf("%w: document key %q", domain.ErrInvalidReference, documentKey)
	}

	removed := u.index.RemoveDocument(documentKey)
	if removed == 0 {
		return 0, fmt.Errorf("%w: document %q", domain.ErrNotFound, documentKey)
	}

	u.registry.Remove(documentKey)
	if err := u.store.Remove(documentKey); err != nil {
		logger.Warn("could not remove stored file %s: %v", documentKey, err)
	}
	if u.corpusCache != nil {
		if err := u.corpusCache.DeleteDocument(context.Background(), documentKey); err != nil {
			logger.Warn("corpus cache delete failed for %s: %v", documentKey, err)
		}
	}
	if err := u.embedCache.Persist(); err != nil {
		logger.Warn("embedding cache persist failed: %v", err)
	}

	logger.Info("removed %s (%d chunks)", documentKey, removed)
	return removed, nil
}
