package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed corpus",
	Long: `Runs a hybrid retrieval query against the indexed corpus.
Semantic similarity is blended with CIP identifier matching, so exact
references like "CIP-007-6 R2" rank alongside paraphrased questions.
Bare standard mentions resolve to the latest registered version.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of citations")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output citations as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	citations, err := searchService.Retrieve(context.Background(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputCitationsJSON(cmd, citations)
	}
	return outputCitationsText(cmd, citations)
}

func outputCitationsJSON(cmd *cobra.Command, citations []domain.Citation) error {
	data, err := json.MarshalIndent(citations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputCitationsText(cmd *cobra.Command, citations []domain.Citation) error {
	if len(citations) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range citations {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, citations[i].SourceLabel, citations[i].Score)
		cmd.Printf("      %s\n", snippet(citations[i].Text, 200))
		cmd.Printf("      Ref: %s\n", citations[i].Locator)
		cmd.Println()
	}
	return nil
}

// snippet truncates text for terminal output without splitting a rune.
func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
