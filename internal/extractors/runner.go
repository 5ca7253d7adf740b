package extractors

import (
	"context"
	"os/exec"
)

// CommandRunner executes an external tool and returns its stdout.
// Extractors that shell out (pdftotext, tesseract) take a runner so
// tests can substitute a mock.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run executes the command and returns its combined stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
