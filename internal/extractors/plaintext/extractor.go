// Package plaintext extracts text from plain text and RTF files.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
	"github.com/docvault-labs/docvault/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents. Bytes are decoded as UTF-8
// best-effort: undecodable sequences are replaced, never dropped
// silently.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"text/rtf",
		"application/rtf",
	}
}

// Extract reads the file and returns its sanitised text content.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrCorruptInput, path, err)
	}

	text := extractors.Sanitize(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrEmptyExtraction, path)
	}

	return text, nil
}
