package domain

// SearchOptions configures a global search query.
type SearchOptions struct {
	// Limit is the maximum number of chunks to retrieve.
	Limit int

	// Category filters results to documents with this category.
	// Empty means no filter.
	Category string
}

// ScoredChunk is a chunk paired with its similarity to a query vector.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the cosine similarity score (higher is closer).
	Similarity float64
}

// Match is a single chunk hit within a grouped search result.
type Match struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// ChunkText is the full chunk content.
	ChunkText string

	// Similarity is the cosine similarity score.
	Similarity float64
}

// SearchResult groups the matches for one document.
type SearchResult struct {
	// DocumentID is the matched document.
	DocumentID string

	// DocumentName is the display name of the document.
	DocumentName string

	// Matches are the chunk hits for this document, best first.
	Matches []Match

	// TotalMatches is the number of chunk hits for this document.
	TotalMatches int

	// Highlight is a display snippet derived from the best-matching
	// chunk: the query substring in context when it occurs literally,
	// otherwise a truncated preview of the chunk.
	Highlight string
}

// SearchResponse is the transient result of a global search request.
type SearchResponse struct {
	// Results are per-document groups, ordered by their best match.
	Results []SearchResult

	// QueryTimeMS is the wall-clock duration of the search in milliseconds.
	QueryTimeMS int64
}
