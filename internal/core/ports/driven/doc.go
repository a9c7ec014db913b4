// Package driven defines the interfaces the core depends on: the
// embedding service, document readers, the disk-backed corpus cache, and
// the upload file store. Adapters implement these; the core never imports
// an adapter.
package driven
