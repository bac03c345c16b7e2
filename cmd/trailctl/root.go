package main

import (
	"github.com/spf13/cobra"
)

var serverURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trailctl",
	Short: "Trail recommendation service CLI",
	Long: `trailctl talks to a running trail-orchestrator instance and
inspects catalog files offline.

Example usage:
  trailctl chat "somewhere quiet with a view"   # one-shot chat turn
  trailctl chat -s my-session "something easier" # continue a session
  trailctl catalog stats -f data/trails.csv      # offline catalog statistics`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9020", "trail-orchestrator base URL")
}
