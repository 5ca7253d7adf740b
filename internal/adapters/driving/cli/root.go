// Package cli implements the docvault command line interface.
// Commands are thin adapters over the core services; wiring happens
// lazily so informational commands work without a configured backend.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docvault-labs/docvault/internal/adapters/driven/embedding/openai"
	"github.com/docvault-labs/docvault/internal/adapters/driven/storage/sqlite"
	"github.com/docvault-labs/docvault/internal/chunker"
	"github.com/docvault-labs/docvault/internal/config"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
	"github.com/docvault-labs/docvault/internal/core/ports/driving"
	"github.com/docvault-labs/docvault/internal/core/services"
	"github.com/docvault-labs/docvault/internal/extractors"
	"github.com/docvault-labs/docvault/internal/extractors/docx"
	"github.com/docvault-labs/docvault/internal/extractors/image"
	"github.com/docvault-labs/docvault/internal/extractors/pdf"
	"github.com/docvault-labs/docvault/internal/extractors/plaintext"
	"github.com/docvault-labs/docvault/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	cfgFile   string
	ownerFlag string
	verbose   bool
)

// Wired services. Tests inject mocks directly; commands wire the real
// stack on first use.
var (
	cfg          *config.Config
	vaultStore   driven.ChunkStore
	embeddingSvc driven.EmbeddingService
	ingestor     driving.Ingestor
	retriever    driving.Retriever
)

var rootCmd = &cobra.Command{
	Use:   "docvault",
	Short: "Personal document vault with semantic search",
	Long: `docvault ingests personal documents (PDFs, Word files, scans,
plain text), chunks and embeds their content, and serves semantic
search over the result.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.docvault/config.toml)")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "owner identity (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup wires the real service stack. Idempotent; commands call it
// before touching any service.
func setup() error {
	if vaultStore != nil {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	vaultStore = store

	embeddingSvc, err = openai.New(openai.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("configuring embedding service: %w", err)
	}

	registry := extractors.NewRegistry(
		plaintext.New(),
		pdf.New(),
		docx.New(),
		image.New(),
	)

	splitter := chunker.New(
		chunker.WithTargetSize(cfg.Chunking.TargetSize),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)

	ingestor = services.NewIngestionPipeline(vaultStore, registry, splitter, embeddingSvc)
	retriever = services.NewRetrievalService(vaultStore, embeddingSvc, cfg.Search.Limit)

	return nil
}

// currentOwner resolves the acting owner: flag first, then config.
func currentOwner() string {
	if ownerFlag != "" {
		return ownerFlag
	}
	if cfg != nil && cfg.Owner != "" {
		return cfg.Owner
	}
	return config.DefaultOwner
}
