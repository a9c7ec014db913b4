package domain

import "regexp"

// documentKeyPattern admits plain filenames only. The leading alphanumeric
// rules out dotfiles, "." and ".."; the absence of separators rules out
// path traversal before any filesystem operation happens.
var documentKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidDocumentKey reports whether key is safe to use as a stored filename
// and index key.
func ValidDocumentKey(key string) bool {
	return documentKeyPattern.MatchString(key)
}
