package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Upload and index a document",
	Long: `Copies the document into the upload store and indexes it:
extracts text page by page, chunks it, embeds each chunk (cache-first),
and adds the result to the searchable corpus. The stored filename becomes
the document key used by remove.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return errors.New("upload service not configured")
	}

	result, err := uploadService.Upload(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %s: %d chunks", result.DocumentKey, result.ChunkCount)
	if result.PagesSkipped > 0 {
		cmd.Printf(" (%d pages skipped)", result.PagesSkipped)
	}
	cmd.Println()
	return nil
}
