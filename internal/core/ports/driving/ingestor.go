package driving

import (
	"context"

	"github.com/docvault-labs/docvault/internal/core/domain"
)

// IngestState identifies a stage of the ingestion state machine.
type IngestState string

// Ingestion states, in order. Failed is reachable from any
// non-terminal state.
const (
	StateReceived  IngestState = "received"
	StateValidated IngestState = "validated"
	StateExtracted IngestState = "extracted"
	StateChunked   IngestState = "chunked"
	StateEmbedded  IngestState = "embedded"
	StateStored    IngestState = "stored"
	StateComplete  IngestState = "complete"
	StateFailed    IngestState = "failed"
)

// IngestRequest is the upload intake handed off by the collaborator.
type IngestRequest struct {
	// DocumentID references an already-registered document.
	DocumentID string

	// OwnerID is the claimed owning user, re-verified against the store.
	OwnerID string

	// FilePath is the uploaded file on local disk.
	FilePath string

	// MIMEType is the declared content type.
	MIMEType string

	// RemoveFile removes FilePath on every exit path when set
	// (temporary upload artifact cleanup).
	RemoveFile bool
}

// IngestResult reports the outcome of one ingestion request.
type IngestResult struct {
	// State is the terminal state reached (StateComplete or StateFailed).
	State IngestState

	// ChunksProcessed is the number of chunks stored on success.
	ChunksProcessed int

	// Err is the taxonomy error on failure, nil on success.
	Err error
}

// Ingestor runs the extract → chunk → embed → store pipeline for one
// uploaded document.
type Ingestor interface {
	// Ingest processes one upload. Re-running ingestion for the same
	// document replaces its previous chunk set.
	Ingest(ctx context.Context, req IngestRequest) IngestResult

	// Delete removes a document and its chunks (deletion intake).
	Delete(ctx context.Context, documentID, ownerID string) error
}

// ContextChunk is a grounding chunk handed to the external
// answer-generation collaborator.
type ContextChunk struct {
	ChunkID    string
	Text       string
	Similarity float64
}

// Retriever serves semantic queries against the chunk store.
type Retriever interface {
	// Search performs global semantic search over the owner's vault,
	// grouped by document.
	Search(ctx context.Context, query, ownerID string, opts domain.SearchOptions) (*domain.SearchResponse, error)

	// ContextFor returns the top-k chunks of one document most similar
	// to query, for use as chat grounding context.
	ContextFor(ctx context.Context, documentID, query, ownerID string, topK int) ([]ContextChunk, error)
}
