package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driving"
	"github.com/docvault-labs/docvault/internal/extractors"
)

var (
	ingestName     string
	ingestCategory string
	ingestMIME     string
	ingestRemove   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the vault",
	Long: `Registers the file as a document, extracts its text, chunks and
embeds the content, and stores the result for semantic search.
Re-ingesting a file under the same document replaces its chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "document display name (default: file name)")
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "", "category label, e.g. insurance or medical")
	ingestCmd.Flags().StringVar(&ingestMIME, "mime", "", "MIME type (default: guessed from extension)")
	ingestCmd.Flags().BoolVar(&ingestRemove, "remove", false, "delete the file after ingestion")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
		return err
	}
	if ingestor == nil {
		return errors.New("ingestion pipeline not configured")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	mimeType := ingestMIME
	if mimeType == "" {
		mimeType = extractors.MIMEForPath(path)
	}
	if mimeType == "" {
		return fmt.Errorf("%w: cannot determine MIME type for %s, use --mime", domain.ErrUnsupportedFormat, path)
	}

	name := ingestName
	if name == "" {
		name = filepath.Base(path)
	}

	doc := &domain.Document{
		ID:       uuid.NewString(),
		OwnerID:  currentOwner(),
		Name:     name,
		Category: ingestCategory,
		MIMEType: mimeType,
	}
	if err := vaultStore.SaveDocument(cmd.Context(), doc); err != nil {
		return fmt.Errorf("registering document: %w", err)
	}

	result := ingestor.Ingest(cmd.Context(), driving.IngestRequest{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		FilePath:   path,
		MIMEType:   mimeType,
		RemoveFile: ingestRemove,
	})
	if result.Err != nil {
		// Leave no half-registered document behind.
		_ = vaultStore.DeleteDocument(cmd.Context(), doc.ID, doc.OwnerID)
		if !domain.Terminal(result.Err) {
			cmd.PrintErrln("Transient failure; retrying may succeed.")
		}
		return fmt.Errorf("ingestion failed: %w", result.Err)
	}

	cmd.Printf("Ingested %s\n", name)
	cmd.Printf("  Document ID: %s\n", doc.ID)
	cmd.Printf("  Chunks:      %d\n", result.ChunksProcessed)
	return nil
}
