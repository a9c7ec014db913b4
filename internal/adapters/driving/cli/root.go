// Package cli wires the agent's services to cobra commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/ports/driving"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/services"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute. Commands nil-check the ones
// they need so a partially wired binary fails with a clear message.
var (
	ingestService driving.Ingestor
	searchService driving.Retriever
	uploadService *services.UploadLifecycle
	seedDir       string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cip-agent",
	Short: "NERC CIP standards retrieval agent",
	Long: `cip-agent indexes NERC CIP standards documents and answers
retrieval queries with cited passages. Documents are chunked, embedded,
and ranked with a hybrid of semantic similarity and CIP keyword matching.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Configure injects the services the commands run against.
func Configure(ingestor driving.Ingestor, retriever driving.Retriever, uploads *services.UploadLifecycle, defaultSeedDir string) {
	ingestService = ingestor
	searchService = retriever
	uploadService = uploads
	seedDir = defaultSeedDir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
