package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/services"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch the seed directory and reseed on changes",
	Long: `Seeds the directory, then watches it for changes. Each burst of
filesystem events triggers a full reseed once the directory has been quiet
for the debounce interval. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", services.DefaultDebounce, "quiet period before reseeding")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := ingestService.SeedDirectory(ctx, dir); err != nil {
		return err
	}

	watcher := services.NewWatcher(ingestService, dir, watchDebounce)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
