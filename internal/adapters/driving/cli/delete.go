package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its chunks",
	Long: `Removes the document record and every derived chunk. Deleting a
document that is already gone succeeds quietly.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		if err := setup(); err != nil {
			return err
		}
	}
	if ingestor == nil {
		return errors.New("ingestion pipeline not configured")
	}

	if err := ingestor.Delete(cmd.Context(), args[0], currentOwner()); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
