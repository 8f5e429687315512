// cmd/service/main.go
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "github-popularity",
		Short: "Harvests GitHub repositories, scores their popularity and serves searches over them.",
		Long: `github-popularity ingests the GitHub repository search for one language and creation date,
scores every repository by stars, forks and recent activity, and serves paged searches
either from its own store or live from GitHub.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	_ = viper.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newServeCmd(), newIngestCmd())
	return rootCmd
}
