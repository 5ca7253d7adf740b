// Package sqlite implements the chunk store on an embedded SQLite
// database. Vectors are stored as little-endian float32 blobs and
// similarity is computed in process over the owner's rows.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docvault-labs/docvault/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
)

// Store is a SQLite-backed chunk store. Every query that touches
// documents or chunks filters by owner_id; there is no code path that
// can return another owner's rows.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.ChunkStore = (*Store)(nil)

// NewStore creates a SQLite store under the given data directory.
// If dataDir is empty, defaults to ~/.docvault/data/vault.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docvault", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vault.db")

	// WAL mode so reads during ingestion do not block
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument stores or updates a document record.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" || doc.OwnerID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, name, category, mime_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			mime_type = excluded.mime_type,
			updated_at = excluded.updated_at
		WHERE documents.owner_id = excluded.owner_id
	`, doc.ID, doc.OwnerID, doc.Name, doc.Category, doc.MIMEType,
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("%w: saving document: %w", domain.ErrStoreWriteFailed, err)
	}

	// Zero rows means the ID exists under another owner and the guarded
	// update touched nothing.
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: saving document: %w", domain.ErrStoreWriteFailed, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: document %s", domain.ErrInvalidOwnership, doc.ID)
	}
	return nil
}

// GetOwnedDocument returns the document only if ownerID owns it.
// A document owned by someone else is indistinguishable from a
// missing one.
func (s *Store) GetOwnedDocument(ctx context.Context, documentID, ownerID string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, category, mime_type, created_at, updated_at
		FROM documents WHERE id = ? AND owner_id = ?
	`, documentID, ownerID)

	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Name, &doc.Category,
		&doc.MIMEType, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning document: %w", domain.ErrStoreReadFailed, err)
	}

	return &doc, nil
}

// ListDocuments returns all documents for an owner, newest first.
func (s *Store) ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, category, mime_type, created_at, updated_at
		FROM documents WHERE owner_id = ?
		ORDER BY created_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %w", domain.ErrStoreReadFailed, err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Name, &doc.Category,
			&doc.MIMEType, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %w", domain.ErrStoreReadFailed, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %w", domain.ErrStoreReadFailed, err)
	}

	return docs, nil
}

// InsertChunks bulk-writes chunks in a single transaction. A failure
// partway rolls the whole batch back.
func (s *Store) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStoreWriteFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, owner_id, position, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrStoreWriteFailed, err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		created := chunk.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.OwnerID,
			chunk.Position, chunk.Content, embeddingBlob, created); err != nil {
			return fmt.Errorf("%w: inserting chunk %s: %w", domain.ErrStoreWriteFailed, chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

// Search returns the owner's chunks most similar to queryVec,
// best first. Candidate rows are filtered by owner (and category)
// in SQL; scoring happens in process.
func (s *Store) Search(ctx context.Context, queryVec []float32, ownerID string, opts domain.SearchOptions) ([]domain.ScoredChunk, error) {
	query := `
		SELECT c.id, c.document_id, c.owner_id, c.position, c.content, c.embedding, c.created_at
		FROM chunks c
		WHERE c.owner_id = ?
	`
	args := []any{ownerID}

	if opts.Category != "" {
		query += ` AND c.document_id IN (SELECT id FROM documents WHERE owner_id = ? AND category = ?)`
		args = append(args, ownerID, opts.Category)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %w", domain.ErrStoreReadFailed, err)
	}
	defer rows.Close()

	scored, err := scoreRows(rows, queryVec)
	if err != nil {
		return nil, err
	}

	return topK(scored, opts.Limit), nil
}

// SearchDocument is Search constrained to a single document.
func (s *Store) SearchDocument(ctx context.Context, queryVec []float32, documentID, ownerID string, limit int) ([]domain.ScoredChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, owner_id, position, content, embedding, created_at
		FROM chunks
		WHERE document_id = ? AND owner_id = ?
	`, documentID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %w", domain.ErrStoreReadFailed, err)
	}
	defer rows.Close()

	scored, err := scoreRows(rows, queryVec)
	if err != nil {
		return nil, err
	}

	return topK(scored, limit), nil
}

// DeleteByDocument removes all chunks for a document owned by ownerID.
// No chunks to delete is a success.
func (s *Store) DeleteByDocument(ctx context.Context, documentID, ownerID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ? AND owner_id = ?",
		documentID, ownerID)
	if err != nil {
		return fmt.Errorf("%w: deleting chunks: %w", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

// DeleteDocument removes the document record and, via the foreign key
// cascade, its chunks. Scoped to ownerID.
func (s *Store) DeleteDocument(ctx context.Context, documentID, ownerID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ? AND owner_id = ?",
		documentID, ownerID)
	if err != nil {
		return fmt.Errorf("%w: deleting document: %w", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

// CountChunks returns the number of chunks stored for an owner.
func (s *Store) CountChunks(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE owner_id = ?", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting chunks: %w", domain.ErrStoreReadFailed, err)
	}
	return count, nil
}

// scoreRows scans chunk rows and pairs each with its similarity to
// the query vector.
func scoreRows(rows *sql.Rows, queryVec []float32) ([]domain.ScoredChunk, error) {
	var scored []domain.ScoredChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.OwnerID,
			&chunk.Position, &chunk.Content, &embeddingBlob, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %w", domain.ErrStoreReadFailed, err)
		}

		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

		scored = append(scored, domain.ScoredChunk{
			Chunk:      chunk,
			Similarity: cosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %w", domain.ErrStoreReadFailed, err)
	}

	return scored, nil
}

// topK sorts by similarity descending and truncates to limit.
// Equal scores order by recency, then document ID, then position,
// so repeated queries return identical rankings.
func topK(scored []domain.ScoredChunk, limit int) []domain.ScoredChunk {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if !a.Chunk.CreatedAt.Equal(b.Chunk.CreatedAt) {
			return a.Chunk.CreatedAt.After(b.Chunk.CreatedAt)
		}
		if a.Chunk.DocumentID != b.Chunk.DocumentID {
			return a.Chunk.DocumentID < b.Chunk.DocumentID
		}
		return a.Chunk.Position < b.Chunk.Position
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
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
