package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// Validation-class errors (ownership, format, corrupt input, empty
// extraction, no valid chunks) are terminal: the input itself cannot
// succeed and is never retried. Transient-class errors (embedding,
// store connectivity) are retried a bounded number of times inside the
// responsible adapter before being surfaced.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidOwnership indicates the referenced document does not
	// exist or is not owned by the claimed user.
	ErrInvalidOwnership = errors.New("document not owned by user")

	// ErrUnsupportedFormat indicates no extractor handles the MIME type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptInput indicates the file could not be opened or parsed.
	ErrCorruptInput = errors.New("corrupt or unreadable input")

	// ErrEmptyExtraction indicates parsing succeeded but yielded no
	// usable text (e.g. a scanned PDF with no OCR layer).
	ErrEmptyExtraction = errors.New("no text could be extracted")

	// ErrNoValidChunks indicates the extracted text produced zero chunks.
	ErrNoValidChunks = errors.New("no valid content to index")

	// ErrEmbeddingUnavailable indicates the embedding backend failed
	// after bounded retries.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreWriteFailed indicates a chunk store write did not commit.
	ErrStoreWriteFailed = errors.New("chunk store write failed")

	// ErrStoreReadFailed indicates a chunk store query failed.
	ErrStoreReadFailed = errors.New("chunk store read failed")
)

// Terminal reports whether err is a validation-class failure that must
// not be retried.
func Terminal(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrInvalidOwnership,
		ErrUnsupportedFormat,
		ErrCorruptInput,
		ErrEmptyExtraction,
		ErrNoValidChunks,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
