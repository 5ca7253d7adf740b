package driven

// Chunker splits extracted text into retrieval-sized segments.
type Chunker interface {
	// Split returns the chunks of text in original order. Text that
	// trims to empty yields zero chunks; this is a caller-visible
	// condition, not an error. In non-overlapping mode, concatenating
	// the chunks reproduces the source content losslessly.
	Split(text string) []string
}
