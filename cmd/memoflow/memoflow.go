// Package memoflowcmder
package memoflowcmder

import (
	"github.com/spf13/cobra"

	servecmder "github.com/memoflow/memoflow/cmd/memoflow/serve"
	versioncmder "github.com/memoflow/memoflow/cmd/version"
)

const memoflowLongDesc string = `Memoflow is a note-taking service with AI enrichment.

Memos are stored immediately and enriched in the background: an AI
provider derives a summary and extra tags, which are merged into the
memo once ready.

Run the service using:
  memoflow serve       Run the API server`

const memoflowShortDesc string = "Memoflow - Notes with AI Enrichment"

func NewMemoflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memoflow",
		Short: memoflowShortDesc,
		Long:  memoflowLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: ./memoflow.toml)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
