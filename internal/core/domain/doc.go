// Package domain contains the core business entities for the retrieval
// engine: chunks, standards references, citations, and domain errors.
// It has no dependencies on adapters or external services.
package domain
