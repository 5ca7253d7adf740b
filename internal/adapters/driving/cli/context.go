package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	contextTopK int
	contextJSON bool
)

var contextCmd = &cobra.Command{
	Use:   "context [document-id] [query]",
	Short: "Fetch grounding chunks from one document",
	Long: `Returns the chunks of a single document most similar to the query,
for use as grounding context when chatting about that document.`,
	Args: cobra.ExactArgs(2),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().IntVarP(&contextTopK, "top-k", "k", 0, "number of chunks to return (default 5)")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		if err := setup(); err != nil {
			return err
		}
	}
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	chunks, err := retriever.ContextFor(cmd.Context(), args[0], args[1], currentOwner(), contextTopK)
	if err != nil {
		return fmt.Errorf("context retrieval failed: %w", err)
	}

	if contextJSON {
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal chunks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(chunks) == 0 {
		cmd.Println("No matching chunks.")
		return nil
	}

	for i, chunk := range chunks {
		cmd.Printf("[%d] (%.2f) %s\n", i+1, chunk.Similarity, chunk.Text)
	}
	return nil
}
