package domain

import "time"

// Document represents a vault document registered by the upload collaborator.
// The pipeline reads its identity and ownership and writes derived chunks
// against it; it never creates or deletes the document record itself.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID is the user that owns this document. Every read and write
	// against the document's chunks is scoped to this owner.
	OwnerID string

	// Name is the human-readable document name.
	Name string

	// Category is an optional grouping label (e.g. "insurance", "medical").
	Category string

	// MIMEType is the declared content type of the uploaded file.
	MIMEType string

	// CreatedAt is when the document was registered.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-processed.
	UpdatedAt time.Time
}

// Chunk is the unit of embedding and retrieval: a bounded segment of a
// document's extracted text together with its vector representation.
// Chunks are immutable once written; re-processing a document replaces
// its full chunk set.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// OwnerID duplicates the document owner so the store can enforce
	// tenant isolation on the chunk table directly.
	OwnerID string

	// Position is the ordinal position within the document.
	Position int

	// Content is the extracted text of this chunk.
	Content string

	// Embedding is the vector representation for semantic search.
	// All chunks in a store share the same dimensionality.
	Embedding []float32

	// CreatedAt is when the chunk was written.
	CreatedAt time.Time
}
