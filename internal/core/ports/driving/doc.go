// Package driving defines the interfaces through which external
// collaborators (CLI, HTTP surface) invoke the core: document ingestion,
// retrieval, and upload lifecycle management.
package driving
