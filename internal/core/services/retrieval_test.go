package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvault-labs/docvault/internal/core/domain"
)

func scoredChunkFor(docID, chunkID, content string, similarity float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{
			ID:         chunkID,
			DocumentID: docID,
			OwnerID:    "alice",
			Content:    content,
		},
		Similarity: similarity,
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := newMockChunkStore()
	embedding := &mockEmbeddingService{}
	svc := NewRetrievalService(store, embedding, 0)

	resp, err := svc.Search(context.Background(), "   ", "alice", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Zero(t, embedding.embedCalls, "empty queries must not hit the embedding backend")
}

func TestSearch_MissingOwner(t *testing.T) {
	svc := NewRetrievalService(newMockChunkStore(), &mockEmbeddingService{}, 0)

	_, err := svc.Search(context.Background(), "deductible", "", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_GroupsByDocument(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-a", "alice", "Insurance Policy")
	store.addDocument("doc-b", "alice", "Lab Results")
	store.searchResults = []domain.ScoredChunk{
		scoredChunkFor("doc-a", "c1", "The deductible is $400 per claim.", 0.95),
		scoredChunkFor("doc-b", "c2", "Cholesterol within normal range.", 0.80),
		scoredChunkFor("doc-a", "c3", "Coverage starts on January 1st.", 0.70),
	}
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	resp, err := svc.Search(context.Background(), "deductible", "alice", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, "doc-a", first.DocumentID)
	assert.Equal(t, "Insurance Policy", first.DocumentName)
	assert.Equal(t, 2, first.TotalMatches)
	require.Len(t, first.Matches, 2)
	assert.Equal(t, "c1", first.Matches[0].ChunkID)
	assert.Equal(t, "c3", first.Matches[1].ChunkID)

	second := resp.Results[1]
	assert.Equal(t, "doc-b", second.DocumentID)
	assert.Equal(t, 1, second.TotalMatches)
}

func TestSearch_HighlightLiteralMatch(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-a", "alice", "Insurance Policy")
	store.searchResults = []domain.ScoredChunk{
		scoredChunkFor("doc-a", "c1",
			strings.Repeat("x", 100)+" The Deductible is $400 per claim. "+strings.Repeat("y", 100),
			0.95),
	}
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	resp, err := svc.Search(context.Background(), "deductible", "alice", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	highlight := resp.Results[0].Highlight
	assert.Contains(t, highlight, "Deductible is $400")
	assert.True(t, strings.HasPrefix(highlight, "..."), "match mid-chunk should be elided on the left")
	assert.True(t, strings.HasSuffix(highlight, "..."), "match mid-chunk should be elided on the right")
}

func TestSearch_HighlightNonASCIIContent(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-a", "alice", "Insurance Policy")
	// Runes whose lowercase form has a different byte length surround
	// the match, so byte offsets from a lowered copy would be wrong.
	store.searchResults = []domain.ScoredChunk{
		scoredChunkFor("doc-a", "c1",
			strings.Repeat("Ⱥ", 200)+" the Deductible is $400 "+strings.Repeat("İ", 200),
			0.95),
	}
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	resp, err := svc.Search(context.Background(), "deductible", "alice", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	highlight := resp.Results[0].Highlight
	assert.Contains(t, highlight, "Deductible is $400")
	assert.True(t, utf8.ValidString(highlight), "snippet must not split runes")
}

func TestBuildHighlight_FoldMatchOffsets(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		want    string
	}{
		{
			name:    "ascii case fold",
			content: "Total DEDUCTIBLE owed",
			query:   "deductible",
			want:    "Total DEDUCTIBLE owed",
		},
		{
			name:    "lowered form longer than original",
			content: strings.Repeat("Ⱥ", 50) + " deductible due",
			query:   "deductible",
			want:    "deductible due",
		},
		{
			name:    "lowered form shorter than original",
			content: strings.Repeat("İ", 50) + " deductible due",
			query:   "deductible",
			want:    "deductible due",
		},
		{
			name:    "multibyte query",
			content: "limite de franchise élevée pour 2026",
			query:   "FRANCHISE ÉLEVÉE",
			want:    "franchise élevée",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildHighlight(tt.content, tt.query)
			assert.Contains(t, got, tt.want)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestSearch_HighlightFallbackPreview(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-a", "alice", "Insurance Policy")
	longText := strings.Repeat("some unrelated words here ", 20)
	store.searchResults = []domain.ScoredChunk{
		scoredChunkFor("doc-a", "c1", longText, 0.95),
	}
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	resp, err := svc.Search(context.Background(), "deductible", "alice", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	highlight := resp.Results[0].Highlight
	assert.True(t, strings.HasSuffix(highlight, "..."))
	assert.LessOrEqual(t, len(highlight), previewLength+3)
}

func TestSearch_EmbeddingFailureFailsFast(t *testing.T) {
	store := newMockChunkStore()
	embedding := &mockEmbeddingService{err: domain.ErrEmbeddingUnavailable}
	svc := NewRetrievalService(store, embedding, 0)

	_, err := svc.Search(context.Background(), "deductible", "alice", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Empty(t, store.lastSearchOwner, "store must not be queried when embedding fails")
}

func TestSearch_DefaultLimit(t *testing.T) {
	store := newMockChunkStore()
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 7)

	_, err := svc.Search(context.Background(), "deductible", "alice", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 7, store.lastSearchOpts.Limit)
	assert.Equal(t, "alice", store.lastSearchOwner)
}

func TestSearch_CategoryPassthrough(t *testing.T) {
	store := newMockChunkStore()
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	_, err := svc.Search(context.Background(), "deductible", "alice",
		domain.SearchOptions{Category: "insurance", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, "insurance", store.lastSearchOpts.Category)
	assert.Equal(t, 3, store.lastSearchOpts.Limit)
}

func TestContextFor(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-a", "alice", "Insurance Policy")
	store.docSearchResults = []domain.ScoredChunk{
		scoredChunkFor("doc-a", "c1", "The deductible is $400 per claim.", 0.95),
		scoredChunkFor("doc-a", "c2", "Coverage starts on January 1st.", 0.70),
	}
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	chunks, err := svc.ContextFor(context.Background(), "doc-a", "deductible", "alice", 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "c1", chunks[0].ChunkID)
	assert.Equal(t, "The deductible is $400 per claim.", chunks[0].Text)
	assert.InDelta(t, 0.95, chunks[0].Similarity, 1e-9)
}

func TestContextFor_UnownedDocument(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-a", "alice", "Insurance Policy")
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	_, err := svc.ContextFor(context.Background(), "doc-a", "deductible", "mallory", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContextFor_DefaultTopK(t *testing.T) {
	store := newMockChunkStore()
	store.addDocument("doc-a", "alice", "Insurance Policy")
	svc := NewRetrievalService(store, &mockEmbeddingService{}, 0)

	_, err := svc.ContextFor(context.Background(), "doc-a", "deductible", "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultContextTopK, store.lastSearchLimit)
}

func TestContextFor_MissingFields(t *testing.T) {
	svc := NewRetrievalService(newMockChunkStore(), &mockEmbeddingService{}, 0)

	_, err := svc.ContextFor(context.Background(), "", "deductible", "alice", 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
