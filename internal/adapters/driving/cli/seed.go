package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [directory]",
	Short: "Index the reference standards directory",
	Long: `Ingests every supported document in the directory with origin
"seeded" and prunes seeded documents whose files no longer exist, so the
seeded corpus mirrors the directory. Defaults to the configured seed
directory when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := seedDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no seed directory configured; pass one as an argument")
	}

	results, err := ingestService.SeedDirectory(context.Background(), dir)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	total := 0
	for _, result := range results {
		total += result.ChunkCount
	}
	cmd.Printf("Seeded %d documents (%d chunks)\n", len(results), total)
	return nil
}
