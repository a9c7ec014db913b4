// Package files provides the filesystem store for uploaded documents.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
)

// Ensure UploadStore implements the interface.
var _ driven.UploadStore = (*UploadStore)(nil)

// UploadStore keeps uploaded files in a flat directory. The stored name is
// the document key.
type UploadStore struct {
	dir string
}

// NewUploadStore creates the store, creating dir if needed.
func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Add copies the file at srcPath into the store and returns the stored
// name. An unsafe filename is rejected; a name collision gets a short
// unique prefix so existing uploads are never overwritten.
func (s *UploadStore) Add(srcPath string) (string, error) {
	name := filepath.Base(srcPath)
	if !domain.ValidDocumentKey(name) {
		return "", fmt.Errorf("%w: unsafe filename %q", domain.ErrInvalidReference, name)
	}

	if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
		name = uuid.New().String()[:8] + "-" + name
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening upload source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("copying upload: %w", err)
	}

	return name, nil
}

// Path returns the filesystem path for a stored name.
func (s *UploadStore) Path(storedName string) string {
	return filepath.Join(s.dir, storedName)
}

// Remove deletes a stored file. Absence is not an error.
func (s *UploadStore) Remove(storedName string) error {
	if !domain.ValidDocumentKey(storedName) {
		return fmt.Errorf("%w: unsafe filename %q", domain.ErrInvalidReference, storedName)
	}
	err := os.Remove(filepath.Join(s.dir, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stored file: %w", err)
	}
	return nil
}
