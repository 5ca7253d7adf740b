// Package pdf extracts text from PDF files using the poppler
// pdftotext tool.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
	"github.com/docvault-labs/docvault/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Extractor handles PDF documents by shelling out to pdftotext and
// concatenating the page text it emits.
type Extractor struct {
	runner extractors.CommandRunner
}

// New creates a PDF extractor using the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: extractors.ExecRunner{}}
}

// NewWithRunner creates a PDF extractor with an injected command
// runner. Used by tests.
func NewWithRunner(runner extractors.CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return "pdftotext is required for PDF extraction.\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils\n" +
		"  Fedora: dnf install poppler-utils"
}

// Extract runs pdftotext over the file and returns the sanitised text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", domain.ErrCorruptInput, path, err)
	}
	if err := CheckAvailable(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEmptyExtraction, err)
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext failed: %w", domain.ErrCorruptInput, err)
	}

	text := extractors.Sanitize(string(out))
	if text == "" {
		// Parsed fine but no text layer (e.g. a pure scan).
		return "", fmt.Errorf("%w: %s", domain.ErrEmptyExtraction, path)
	}

	return text, nil
}
