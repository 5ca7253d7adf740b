package driven

import "context"

// Extractor converts a stored file into plain text.
// Each extractor handles specific MIME types (e.g., PDF, DOCX).
//
// Extraction is a pure transform: implementations must not mutate or
// delete the source file. Cleanup is the ingestion pipeline's concern.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract reads the file at path and returns its text content as a
	// single UTF-8 string with whitespace normalised and NUL bytes
	// removed. It returns domain.ErrCorruptInput when the file cannot
	// be parsed and domain.ErrEmptyExtraction when parsing succeeds but
	// yields no usable text.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry dispatches extraction by MIME type.
type ExtractorRegistry interface {
	// Extract selects the extractor for mimeType and runs it.
	// Returns domain.ErrUnsupportedFormat for unrecognised MIME types.
	Extract(ctx context.Context, path, mimeType string) (string, error)

	// Supports reports whether a MIME type has a registered extractor.
	Supports(mimeType string) bool
}
