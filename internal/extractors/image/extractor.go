// Package image recovers visible text from images via tesseract OCR.
package image

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

// ErrOCRToolNotFound indicates tesseract is not installed.
var ErrOCRToolNotFound = errors.New("tesseract not found in PATH")

// Extractor handles image documents by shelling out to tesseract.
type Extractor struct {
	runner extractors.CommandRunner
}

// New creates an OCR extractor using the real tesseract binary.
func New() *Extractor {
	return &Extractor{runner: extractors.ExecRunner{}}
}

// NewWithRunner creates an OCR extractor with an injected command
// runner. Used by tests.
func NewWithRunner(runner extractors.CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"image/png",
		"image/jpeg",
		"image/tiff",
		"image/bmp",
		"image/webp",
	}
}

// CheckAvailable reports whether tesseract is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return ErrOCRToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing tesseract.
func InstallInstructions() string {
	return "tesseract is required for image OCR.\n" +
		"  macOS:  brew install tesseract\n" +
		"  Debian: apt install tesseract-ocr\n" +
		"  Fedora: dnf install tesseract"
}

// Extract runs OCR over the image and returns the sanitised text.
// When OCR is unavailable the image cannot yield text, which is an
// empty-extraction condition rather than a corrupt input.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", domain.ErrCorruptInput, path, err)
	}
	if err := CheckAvailable(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEmptyExtraction, err)
	}

	out, err := e.runner.Run(ctx, "tesseract", path, "stdout")
	if err != nil {
		return "", fmt.Errorf("%w: tesseract failed: %w", domain.ErrCorruptInput, err)
	}

	text := extractors.Sanitize(string(out))
	if text == "" {
		return "", fmt.Errorf("%w: no visible text in %s", domain.ErrEmptyExtraction, path)
	}

	return text, nil
}
