package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docvault-labs/docvault/internal/core/domain"
)

var (
	searchLimit    int
	searchCategory string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the vault semantically",
	Long: `Embeds the query and returns the most similar document chunks,
grouped by document with a highlight snippet per document.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of chunk hits (default from config)")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict to documents with this category")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		if err := setup(); err != nil {
			return err
		}
	}
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	resp, err := retriever.Search(cmd.Context(), args[0], currentOwner(), domain.SearchOptions{
		Limit:    searchLimit,
		Category: searchCategory,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, result := range resp.Results {
		best := result.Matches[0]
		cmd.Printf("[%d] %s (%.2f, %d match", i+1, result.DocumentName, best.Similarity, result.TotalMatches)
		if result.TotalMatches != 1 {
			cmd.Print("es")
		}
		cmd.Println(")")
		if result.Highlight != "" {
			cmd.Printf("    %s\n", result.Highlight)
		}
		cmd.Println()
	}
	cmd.Printf("%d document(s) in %dms\n", len(resp.Results), resp.QueryTimeMS)

	return nil
}
