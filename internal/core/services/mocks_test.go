package services

import (
	"context"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockChunkStore implements driven.ChunkStore with in-memory state and
// per-operation error injection.
type mockChunkStore struct {
	docs   map[string]*domain.Document
	chunks map[string][]domain.Chunk // by document ID

	getErr    error
	insertErr error
	deleteErr error
	searchErr error

	searchResults    []domain.ScoredChunk
	docSearchResults []domain.ScoredChunk

	insertCalls      int
	deleteByDocCalls int
	lastSearchOwner  string
	lastSearchOpts   domain.SearchOptions
	lastSearchLimit  int
}

var _ driven.ChunkStore = (*mockChunkStore)(nil)

func newMockChunkStore() *mockChunkStore {
	return &mockChunkStore{
		docs:   make(map[string]*domain.Document),
		chunks: make(map[string][]domain.Chunk),
	}
}

func (m *mockChunkStore) addDocument(id, ownerID, name string) {
	m.docs[id] = &domain.Document{
		ID:       id,
		OwnerID:  ownerID,
		Name:     name,
		MIMEType: "text/plain",
	}
}

func (m *mockChunkStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockChunkStore) GetOwnedDocument(_ context.Context, documentID, ownerID string) (*domain.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	doc, ok := m.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockChunkStore) ListDocuments(_ context.Context, ownerID string) ([]domain.Document, error) {
	var docs []domain.Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (m *mockChunkStore) InsertChunks(_ context.Context, chunks []domain.Chunk) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, chunk := range chunks {
		m.chunks[chunk.DocumentID] = append(m.chunks[chunk.DocumentID], chunk)
	}
	return nil
}

func (m *mockChunkStore) Search(_ context.Context, _ []float32, ownerID string, opts domain.SearchOptions) ([]domain.ScoredChunk, error) {
	m.lastSearchOwner = ownerID
	m.lastSearchOpts = opts
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func (m *mockChunkStore) SearchDocument(_ context.Context, _ []float32, _, _ string, limit int) ([]domain.ScoredChunk, error) {
	m.lastSearchLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > 0 && limit < len(m.docSearchResults) {
		return m.docSearchResults[:limit], nil
	}
	return m.docSearchResults, nil
}

func (m *mockChunkStore) DeleteByDocument(_ context.Context, documentID, ownerID string) error {
	m.deleteByDocCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if doc, ok := m.docs[documentID]; ok && doc.OwnerID == ownerID {
		delete(m.chunks, documentID)
	}
	return nil
}

func (m *mockChunkStore) DeleteDocument(_ context.Context, documentID, ownerID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if doc, ok := m.docs[documentID]; ok && doc.OwnerID == ownerID {
		delete(m.docs, documentID)
		delete(m.chunks, documentID)
	}
	return nil
}

func (m *mockChunkStore) CountChunks(_ context.Context, ownerID string) (int, error) {
	count := 0
	for docID, chunks := range m.chunks {
		if doc, ok := m.docs[docID]; ok && doc.OwnerID == ownerID {
			count += len(chunks)
		}
	}
	return count, nil
}

func (m *mockChunkStore) Close() error { return nil }

// mockRegistry implements driven.ExtractorRegistry.
type mockRegistry struct {
	text  string
	err   error
	calls int
}

var _ driven.ExtractorRegistry = (*mockRegistry)(nil)

func (m *mockRegistry) Extract(_ context.Context, _, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockRegistry) Supports(_ string) bool {
	return m.err == nil
}

// mockChunker implements driven.Chunker with preset output.
type mockChunker struct {
	pieces []string
}

var _ driven.Chunker = (*mockChunker)(nil)

func (m *mockChunker) Split(_ string) []string {
	return m.pieces
}

// mockEmbeddingService implements driven.EmbeddingService.
type mockEmbeddingService struct {
	err        error
	dims       int
	batchCalls int
	embedCalls int
}

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

func (m *mockEmbeddingService) vector() []float32 {
	dims := m.dims
	if dims == 0 {
		dims = 3
	}
	vec := make([]float32, dims)
	vec[0] = 1
	return vec
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = m.vector()
	}
	return vectors, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims == 0 {
		return 3
	}
	return m.dims
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embedding" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }

func (m *mockEmbeddingService) Close() error { return nil }
