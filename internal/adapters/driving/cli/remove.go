package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

var removeCmd = &cobra.Command{
	Use:   "remove [document-key]",
	Short: "Remove an uploaded document",
	Long: `Removes a document from the corpus: its chunks, its standards
registry entry, its persisted cache entries, and its stored file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return errors.New("upload service not configured")
	}

	removed, err := uploadService.Remove(args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("No document %q in the corpus.\n", args[0])
			return nil
		}
		return fmt.Errorf("remove failed: %w", err)
	}

	cmd.Printf("Removed %s (%d chunks)\n", args[0], removed)
	return nil
}
