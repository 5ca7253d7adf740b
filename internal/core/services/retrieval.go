package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
	"github.com/docvault-labs/docvault/internal/core/ports/driving"
	"github.com/docvault-labs/docvault/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// Retrieval defaults.
const (
	DefaultSearchLimit = 10
	DefaultContextTopK = 5

	// highlightWindow is how many characters of context surround a
	// literal query match in a highlight snippet.
	highlightWindow = 60

	// previewLength bounds the fallback highlight when the query does
	// not occur literally in the best chunk.
	previewLength = 200
)

// RetrievalService answers semantic queries over an owner's vault.
// The query is embedded exactly once per request; an embedding failure
// fails the whole query rather than degrading to partial results.
type RetrievalService struct {
	store        driven.ChunkStore
	embedding    driven.EmbeddingService
	defaultLimit int
}

// NewRetrievalService creates a new retrieval service. defaultLimit
// applies when a query does not specify its own; zero means
// DefaultSearchLimit.
func NewRetrievalService(store driven.ChunkStore, embedding driven.EmbeddingService, defaultLimit int) *RetrievalService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultSearchLimit
	}
	return &RetrievalService{
		store:        store,
		embedding:    embedding,
		defaultLimit: defaultLimit,
	}
}

// Search performs global semantic search over the owner's chunks and
// groups the hits by document, best match first.
func (s *RetrievalService) Search(ctx context.Context, query, ownerID string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.SearchResponse{Results: []domain.SearchResult{}}, nil
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner ID is required", domain.ErrInvalidInput)
	}

	if opts.Limit <= 0 {
		opts.Limit = s.defaultLimit
	}

	queryVec, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := s.store.Search(ctx, queryVec, ownerID, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("search executed", "owner_id", ownerID, "hits", len(scored))

	results, err := s.groupByDocument(ctx, scored, ownerID, query)
	if err != nil {
		return nil, err
	}

	return &domain.SearchResponse{
		Results:     results,
		QueryTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

// ContextFor returns the top-k chunks of one document most similar to
// the query, for use as chat grounding context.
func (s *RetrievalService) ContextFor(ctx context.Context, documentID, query, ownerID string, topK int) ([]driving.ContextChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" || documentID == "" || ownerID == "" {
		return nil, fmt.Errorf("%w: document ID, owner ID and query are required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultContextTopK
	}

	// Resolve the document first so an unowned ID fails with not-found
	// instead of silently returning zero chunks.
	if _, err := s.store.GetOwnedDocument(ctx, documentID, ownerID); err != nil {
		return nil, err
	}

	queryVec, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := s.store.SearchDocument(ctx, queryVec, documentID, ownerID, topK)
	if err != nil {
		return nil, err
	}

	chunks := make([]driving.ContextChunk, len(scored))
	for i, sc := range scored {
		chunks[i] = driving.ContextChunk{
			ChunkID:    sc.Chunk.ID,
			Text:       sc.Chunk.Content,
			Similarity: sc.Similarity,
		}
	}
	return chunks, nil
}

// groupByDocument folds ranked chunk hits into per-document results.
// Document order follows each document's best hit, which preserves the
// store's ranking.
func (s *RetrievalService) groupByDocument(ctx context.Context, scored []domain.ScoredChunk, ownerID, query string) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(scored))
	byDoc := make(map[string]int)

	for _, sc := range scored {
		idx, seen := byDoc[sc.Chunk.DocumentID]
		if !seen {
			doc, err := s.store.GetOwnedDocument(ctx, sc.Chunk.DocumentID, ownerID)
			if err != nil {
				return nil, fmt.Errorf("resolving document %s: %w", sc.Chunk.DocumentID, err)
			}

			results = append(results, domain.SearchResult{
				DocumentID:   doc.ID,
				DocumentName: doc.Name,
				Highlight:    buildHighlight(sc.Chunk.Content, query),
			})
			idx = len(results) - 1
			byDoc[sc.Chunk.DocumentID] = idx
		}

		results[idx].Matches = append(results[idx].Matches, domain.Match{
			ChunkID:    sc.Chunk.ID,
			ChunkText:  sc.Chunk.Content,
			Similarity: sc.Similarity,
		})
		results[idx].TotalMatches++
	}

	return results, nil
}

// buildHighlight derives a display snippet from the best-matching
// chunk. A literal (case-insensitive) occurrence of the query is shown
// in context; otherwise the chunk is truncated to a preview.
func buildHighlight(content, query string) string {
	matchStart, matchEnd := indexFold(content, query)
	if matchStart < 0 {
		return truncate(content, previewLength)
	}

	start := matchStart - highlightWindow
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	end := matchEnd + highlightWindow
	if end > len(content) {
		end = len(content)
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	snippet := strings.TrimSpace(content[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet += "..."
	}
	return snippet
}

// indexFold returns the byte range in s of the first case-insensitive
// occurrence of substr, or (-1, -1) if there is none. The match is
// located on s itself, never on a lowered copy, so the offsets stay
// valid when case conversion changes rune byte lengths.
func indexFold(s, substr string) (int, int) {
	if substr == "" {
		return 0, 0
	}
	for i := range s {
		if end, ok := matchFold(s, i, substr); ok {
			return i, end
		}
	}
	return -1, -1
}

// matchFold reports whether substr occurs at byte offset start of s,
// comparing rune by rune under simple case folding, and returns the
// byte offset just past the match.
func matchFold(s string, start int, substr string) (int, bool) {
	i := start
	for _, qr := range substr {
		r, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(r) != unicode.ToLower(qr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

// truncate shortens s to at most n bytes, on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	cut := s[:n]
	// Back off to the last space so the preview does not end mid-word.
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}
