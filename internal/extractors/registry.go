package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
	"github.com/docvault-labs/docvault/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction to the extractor registered for a
// MIME type.
type Registry struct {
	byMIME map[string]driven.Extractor
}

// NewRegistry creates a registry from the given extractors. Later
// extractors win when two claim the same MIME type.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{
		byMIME: make(map[string]driven.Extractor),
	}
	for _, e := range extractors {
		for _, mt := range e.SupportedMIMETypes() {
			r.byMIME[normaliseMIME(mt)] = e
		}
	}
	return r
}

// Supports reports whether a MIME type has a registered extractor.
func (r *Registry) Supports(mimeType string) bool {
	_, ok := r.byMIME[normaliseMIME(mimeType)]
	return ok
}

// Extract selects the extractor for mimeType and runs it.
func (r *Registry) Extract(ctx context.Context, path, mimeType string) (string, error) {
	extractor, ok := r.byMIME[normaliseMIME(mimeType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mimeType)
	}

	logger.Debug("extracting text", "path", path, "mime_type", mimeType)
	return extractor.Extract(ctx, path)
}

// normaliseMIME lowercases the type and strips parameters
// (e.g. "text/plain; charset=utf-8" -> "text/plain").
func normaliseMIME(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if base, _, found := strings.Cut(mimeType, ";"); found {
		return strings.TrimSpace(base)
	}
	return mimeType
}
