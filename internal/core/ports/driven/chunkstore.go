package driven

import (
	"context"

	"github.com/docvault-labs/docvault/internal/core/domain"
)

// ChunkStore persists documents and their embedded chunks.
//
// Owner scoping is the central security property of this port: every
// read and write is filtered by owner at the query layer. There is no
// operation that can observe or mutate another tenant's chunks.
type ChunkStore interface {
	// SaveDocument registers or updates a document record. Used by the
	// upload collaborator (CLI layer), not by the pipeline.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetOwnedDocument returns the document only if it exists and is
	// owned by ownerID; otherwise domain.ErrNotFound. The ingestion
	// pipeline calls this before accepting work.
	GetOwnedDocument(ctx context.Context, documentID, ownerID string) (*domain.Document, error)

	// ListDocuments returns all documents for an owner.
	ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error)

	// InsertChunks bulk-writes chunks in a single transaction.
	// If the write fails partway nothing is persisted.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to opts.Limit chunks owned by ownerID with the
	// highest cosine similarity to queryVec, descending by score. Ties
	// are broken by chunk recency then document ID for determinism.
	Search(ctx context.Context, queryVec []float32, ownerID string, opts domain.SearchOptions) ([]domain.ScoredChunk, error)

	// SearchDocument is Search constrained to a single document.
	SearchDocument(ctx context.Context, queryVec []float32, documentID, ownerID string, limit int) ([]domain.ScoredChunk, error)

	// DeleteByDocument removes all chunks for a document owned by
	// ownerID. Deleting a document with no chunks is a no-op success.
	DeleteByDocument(ctx context.Context, documentID, ownerID string) error

	// DeleteDocument removes the document record and its chunks,
	// scoped to ownerID. Used by the deletion intake.
	DeleteDocument(ctx context.Context, documentID, ownerID string) error

	// CountChunks returns the number of chunks stored for an owner.
	CountChunks(ctx context.Context, ownerID string) (int, error)

	// Close closes the underlying database.
	Close() error
}
