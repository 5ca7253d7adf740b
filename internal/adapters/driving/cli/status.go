package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault contents and backend health",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if vaultStore == nil {
		if err := setup(); err != nil {
			return err
		}
	}
	if vaultStore == nil {
		return errors.New("store not configured")
	}

	owner := currentOwner()
	docs, err := vaultStore.ListDocuments(cmd.Context(), owner)
	if err != nil {
		return err
	}
	chunkCount, err := vaultStore.CountChunks(cmd.Context(), owner)
	if err != nil {
		return err
	}

	cmd.Printf("Owner:     %s\n", owner)
	cmd.Printf("Documents: %d\n", len(docs))
	cmd.Printf("Chunks:    %d\n", chunkCount)

	if embeddingSvc != nil {
		cmd.Printf("Embedding: %s (%d dimensions)", embeddingSvc.ModelName(), embeddingSvc.Dimensions())
		if err := embeddingSvc.Ping(cmd.Context()); err != nil {
			cmd.Printf(" - unreachable: %v\n", err)
		} else {
			cmd.Println(" - ok")
		}
	}

	if len(docs) > 0 {
		cmd.Println()
		for _, doc := range docs {
			cmd.Printf("  %s  %-30s", doc.ID, doc.Name)
			if doc.Category != "" {
				cmd.Printf("  [%s]", doc.Category)
			}
			cmd.Println()
		}
	}
	return nil
}
