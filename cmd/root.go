package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grid_dashboard",
	Short: "Monitoring dashboard for grid telemetry and network traffic",
	Long: `A service that classifies electrical-grid sensor readings and network
packets as normal or anomalous, records every classification in a durable
event log, and serves recent history and analytics feeds.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			log.Error().Err(err).Msg("Failed to display help")
		}
	},
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
}
