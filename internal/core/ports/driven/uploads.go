package driven

// UploadStore keeps the raw files behind uploaded documents.
type UploadStore interface {
	// Add copies the file at srcPath into the store and returns the stored
	// name, which doubles as the document key.
	Add(srcPath string) (string, error)

	// Path returns the filesystem path for a stored name.
	Path(storedName string) string

	// Remove deletes a stored file. Removing an absent file is not an
	// error: removal is idempotent.
	Remove(storedName string) error
}
