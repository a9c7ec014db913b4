// Package sqlite provides the disk-backed corpus cache. It persists
// embedded chunks so the in-memory index can be restored on startup
// without re-reading or re-embedding any document.
//
// The database lives in the agent data directory and is opened in WAL
// mode. Schema changes are applied through embedded SQL migrations.
package sqlite
