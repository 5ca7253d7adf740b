package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driving"
)

// newPipeline wires a pipeline from mocks with sensible happy-path
// defaults.
func newPipeline(store *mockChunkStore) (*IngestionPipeline, *mockRegistry, *mockChunker, *mockEmbeddingService) {
	registry := &mockRegistry{text: "Policy Number: 12345. The deductible is $400 per claim."}
	chunker := &mockChunker{pieces: []string{"Policy Number: 12345.", "The deductible is $400 per claim."}}
	embedding := &mockEmbeddingService{}
	return NewIngestionPipeline(store, registry, chunker, embedding), registry, chunker, embedding
}

func writeUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.txt")
	require.NoError(t, os.WriteFile(path, []byte("uploaded content"), 0600))
	return path
}

func TestIngest_Success(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, _, _, _ := newPipeline(store)

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   writeUpload(t),
		MIMEType:   "text/plain",
	})

	require.NoError(t, result.Err)
	assert.Equal(t, driving.StateComplete, result.State)
	assert.Equal(t, 2, result.ChunksProcessed)

	stored := store.chunks["doc-1"]
	require.Len(t, stored, 2)
	for i, chunk := range stored {
		assert.Equal(t, i, chunk.Position)
		assert.Equal(t, "alice", chunk.OwnerID)
		assert.Equal(t, "doc-1", chunk.DocumentID)
		assert.NotEmpty(t, chunk.ID)
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestIngest_ReplacesPreviousChunks(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, _, _, _ := newPipeline(store)

	req := driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   writeUpload(t),
		MIMEType:   "text/plain",
	}

	first := pipeline.Ingest(context.Background(), req)
	require.NoError(t, first.Err)
	second := pipeline.Ingest(context.Background(), req)
	require.NoError(t, second.Err)

	// Re-ingestion clears the old set first, so the count stays stable.
	assert.Len(t, store.chunks["doc-1"], 2)
	assert.Equal(t, 2, store.deleteByDocCalls)
}

func TestIngest_MissingFields(t *testing.T) {
	store := newMockChunkStore()
	pipeline, registry, _, _ := newPipeline(store)

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
	})

	assert.Equal(t, driving.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, domain.ErrInvalidInput)
	assert.Zero(t, registry.calls)
}

func TestIngest_OwnershipMismatch(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, registry, _, _ := newPipeline(store)

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "mallory",
		FilePath:   writeUpload(t),
		MIMEType:   "text/plain",
	})

	assert.Equal(t, driving.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, domain.ErrInvalidOwnership)
	assert.Zero(t, registry.calls, "extraction must not run for unowned documents")
}

func TestIngest_UnsupportedFormat(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, registry, _, _ := newPipeline(store)
	registry.err = domain.ErrUnsupportedFormat

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   writeUpload(t),
		MIMEType:   "application/x-unknown",
	})

	assert.Equal(t, driving.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, domain.ErrUnsupportedFormat)
}

func TestIngest_NoValidChunks(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, _, chunker, embedding := newPipeline(store)
	chunker.pieces = nil

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   writeUpload(t),
		MIMEType:   "text/plain",
	})

	assert.Equal(t, driving.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, domain.ErrNoValidChunks)
	assert.Zero(t, embedding.batchCalls, "empty chunk sets must not reach the embedder")
}

func TestIngest_EmbeddingFailureStoresNothing(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, _, _, embedding := newPipeline(store)
	embedding.err = domain.ErrEmbeddingUnavailable

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   writeUpload(t),
		MIMEType:   "text/plain",
	})

	assert.Equal(t, driving.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, domain.ErrEmbeddingUnavailable)
	assert.Zero(t, store.insertCalls)
	assert.Empty(t, store.chunks["doc-1"])
}

func TestIngest_StoreFailure(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, _, _, _ := newPipeline(store)
	store.insertErr = domain.ErrStoreWriteFailed

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   writeUpload(t),
		MIMEType:   "text/plain",
	})

	assert.Equal(t, driving.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, domain.ErrStoreWriteFailed)
}

func TestIngest_RemovesFileOnSuccess(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, _, _, _ := newPipeline(store)
	path := writeUpload(t)

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   path,
		MIMEType:   "text/plain",
		RemoveFile: true,
	})

	require.NoError(t, result.Err)
	assert.NoFileExists(t, path)
}

func TestIngest_RemovesFileOnFailure(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, registry, _, _ := newPipeline(store)
	registry.err = domain.ErrCorruptInput
	path := writeUpload(t)

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   path,
		MIMEType:   "text/plain",
		RemoveFile: true,
	})

	assert.Equal(t, driving.StateFailed, result.State)
	assert.NoFileExists(t, path, "upload artifact must be cleaned up on failure too")
}

func TestIngest_KeepsFileWhenNotAsked(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	pipeline, _, _, _ := newPipeline(store)
	path := writeUpload(t)

	result := pipeline.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		OwnerID:    "alice",
		FilePath:   path,
		MIMEType:   "text/plain",
	})

	require.NoError(t, result.Err)
	assert.FileExists(t, path)
}

func TestDelete(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-1", "alice", "Policy")
	store.chunks["doc-1"] = []domain.Chunk{{ID: "c1", DocumentID: "doc-1", OwnerID: "alice"}}
	pipeline, _, _, _ := newPipeline(store)

	require.NoError(t, pipeline.Delete(context.Background(), "doc-1", "alice"))
	assert.Empty(t, store.docs)
	assert.Empty(t, store.chunks)

	// Deleting again is a success.
	assert.NoError(t, pipeline.Delete(context.Background(), "doc-1", "alice"))
}

func TestDelete_MissingFields(t *testing.T) {
	pipeline, _, _, _ := newPipeline(newMockChunkStore())

	err := pipeline.Delete(context.Background(), "", "alice")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
