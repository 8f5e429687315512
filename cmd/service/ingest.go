// cmd/service/ingest.go
package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion pass and print its statistics as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Logs go to stderr so stdout carries only the statistics.
			a, err := newApp(ctx, os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			if a.syncer == nil {
				return errors.New("ingestion is disabled: check GITHUB_DATA_FETCH_ENABLED, GITHUB_SEARCH_LANGUAGE and GITHUB_SEARCH_CREATED_DATE")
			}

			stats := a.syncer.Run(ctx)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
