package cmd

import (
	"github.com/spf13/cobra"

	"stocksim/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "stockctl",
	Short: "Operator tooling for the simulated stock price service",
	Long: `stockctl is the operator companion to the stocksim server.

It provides tools for:
  - Probing the upstream provider for a single opening price
  - Inspecting the durable instrument state the server maintains`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.json (optional)")
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgPath)
}
