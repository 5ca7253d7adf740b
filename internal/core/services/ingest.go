package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
	"github.com/docvault-labs/docvault/internal/core/ports/driving"
	"github.com/docvault-labs/docvault/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.Ingestor = (*IngestionPipeline)(nil)

// IngestionPipeline runs the extract, chunk, embed, store sequence for
// one uploaded document. Stages run strictly in order; the first
// failure aborts the run with nothing persisted.
type IngestionPipeline struct {
	store     driven.ChunkStore
	registry  driven.ExtractorRegistry
	chunker   driven.Chunker
	embedding driven.EmbeddingService
}

// NewIngestionPipeline creates a new ingestion pipeline.
func NewIngestionPipeline(
	store driven.ChunkStore,
	registry driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedding driven.EmbeddingService,
) *IngestionPipeline {
	return &IngestionPipeline{
		store:     store,
		registry:  registry,
		chunker:   chunker,
		embedding: embedding,
	}
}

// Ingest processes one upload request. The uploaded file is removed on
// every exit path when the request asks for it, success and failure
// alike. Re-ingesting a document replaces its previous chunk set.
func (p *IngestionPipeline) Ingest(ctx context.Context, req driving.IngestRequest) driving.IngestResult {
	state := driving.StateReceived

	if req.RemoveFile {
		defer func() {
			if err := os.Remove(req.FilePath); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove upload file", "path", req.FilePath, "error", err)
			}
		}()
	}

	fail := func(err error) driving.IngestResult {
		logger.Warn("ingestion failed",
			"document_id", req.DocumentID,
			"state", string(state),
			"error", err)
		return driving.IngestResult{State: driving.StateFailed, Err: err}
	}

	logger.Info("ingestion started",
		"document_id", req.DocumentID,
		"mime_type", req.MIMEType)

	if req.DocumentID == "" || req.OwnerID == "" || req.FilePath == "" {
		return fail(fmt.Errorf("%w: document ID, owner ID and file path are required", domain.ErrInvalidInput))
	}

	// Ownership is re-resolved against the store rather than trusted
	// from the request.
	doc, err := p.store.GetOwnedDocument(ctx, req.DocumentID, req.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fail(fmt.Errorf("%w: document %s is not owned by %s",
				domain.ErrInvalidOwnership, req.DocumentID, req.OwnerID))
		}
		return fail(err)
	}
	state = driving.StateValidated

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = doc.MIMEType
	}

	text, err := p.registry.Extract(ctx, req.FilePath, mimeType)
	if err != nil {
		return fail(err)
	}
	state = driving.StateExtracted
	logger.Debug("text extracted", "document_id", req.DocumentID, "chars", len(text))

	pieces := p.chunker.Split(text)
	if len(pieces) == 0 {
		return fail(fmt.Errorf("%w: document %s produced no chunks", domain.ErrNoValidChunks, req.DocumentID))
	}
	state = driving.StateChunked
	logger.Debug("text chunked", "document_id", req.DocumentID, "chunks", len(pieces))

	vectors, err := p.embedding.EmbedBatch(ctx, pieces)
	if err != nil {
		return fail(err)
	}
	if len(vectors) != len(pieces) {
		return fail(fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(pieces)))
	}
	state = driving.StateEmbedded

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			OwnerID:    doc.OwnerID,
			Position:   i,
			Content:    content,
			Embedding:  vectors[i],
			CreatedAt:  now,
		}
	}

	// Replace semantics: clear any previous chunk set before writing
	// the new one, so re-ingestion never duplicates.
	if err := p.store.DeleteByDocument(ctx, doc.ID, doc.OwnerID); err != nil {
		return fail(err)
	}
	if err := p.store.InsertChunks(ctx, chunks); err != nil {
		return fail(err)
	}
	state = driving.StateStored

	doc.UpdatedAt = now
	if err := p.store.SaveDocument(ctx, doc); err != nil {
		logger.Warn("failed to touch document timestamp", "document_id", doc.ID, "error", err)
	}

	logger.Info("ingestion complete",
		"document_id", doc.ID,
		"chunks", len(chunks))

	return driving.IngestResult{
		State:           driving.StateComplete,
		ChunksProcessed: len(chunks),
	}
}

// Delete removes a document and its chunks for the given owner.
// Deleting something already gone is a success.
func (p *IngestionPipeline) Delete(ctx context.Context, documentID, ownerID string) error {
	if documentID == "" || ownerID == "" {
		return fmt.Errorf("%w: document ID and owner ID are required", domain.ErrInvalidInput)
	}

	if err := p.store.DeleteDocument(ctx, documentID, ownerID); err != nil {
		return err
	}

	logger.Info("document deleted", "document_id", documentID)
	return nil
}
