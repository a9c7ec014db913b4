package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driven"
)

// Ensure CorpusCache implements the interface.
var _ driven.CorpusCache = (*CorpusCache)(nil)

// CorpusCache is the SQLite-backed chunk store.
type CorpusCache struct {
	db   *sql.DB
	path string
}

// NewCorpusCache opens (creating if needed) the corpus database in
// dataDir. If dataDir is empty, defaults to ~/.cip-agent/data.
func NewCorpusCache(dataDir string) (*CorpusCache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cip-agent", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "corpus.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &CorpusCache{db: db, path: dbPath}
	if err := c.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return c, nil
}

// migrate runs all pending migrations.
func (c *CorpusCache) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_corpus.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := c.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := c.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument replaces the persisted chunk set for a document key in one
// transaction, mirroring the atomic replacement the in-memory index does.
func (c *CorpusCache) SaveDocument(ctx context.Context, documentKey string, chunks []domain.Chunk) error {
	if documentKey == "" {
		return domain.ErrInvalidInput
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_key = ?", documentKey); err != nil {
		return fmt.Errorf("deleting previous chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_key, text, source_label, locator, origin,
			page, sequence_index, standard_base, standard_version, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, documentKey, chunk.Text, chunk.SourceLabel, chunk.Locator,
			string(chunk.Origin), chunk.Page, chunk.SequenceIndex,
			chunk.Standard.Base, chunk.Standard.Version,
			float32SliceToBytes(chunk.Embedding),
		); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteDocument removes the persisted chunks for a document key.
func (c *CorpusCache) DeleteDocument(ctx context.Context, documentKey string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_key = ?", documentKey)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", documentKey, err)
	}
	return nil
}

// DeleteOrigin removes every persisted chunk with the given origin tag.
func (c *CorpusCache) DeleteOrigin(ctx context.Context, origin domain.Origin) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM chunks WHERE origin = ?", string(origin))
	if err != nil {
		return fmt.Errorf("deleting origin %s: %w", origin, err)
	}
	return nil
}

// LoadAll returns every persisted chunk, grouped by document in insertion
// order, then by page and sequence.
func (c *CorpusCache) LoadAll(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, document_key, text, source_label, locator, origin,
			page, sequence_index, standard_base, standard_version, embedding
		FROM chunks
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var origin string
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentKey, &chunk.Text,
			&chunk.SourceLabel, &chunk.Locator, &origin,
			&chunk.Page, &chunk.SequenceIndex,
			&chunk.Standard.Base, &chunk.Standard.Version,
			&embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Origin = domain.Origin(origin)
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// Close closes the database.
func (c *CorpusCache) Close() error {
	return c.db.Close()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
