// Package services contains the application services that implement the
// driving ports: document ingestion, hybrid retrieval, upload lifecycle,
// and the seed-directory watcher. Services depend only on the core domain
// and the driven ports; adapters are injected at wiring time.
package services
