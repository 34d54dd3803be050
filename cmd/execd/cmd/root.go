package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "execd",
	Short: "Execution core for an automated trading platform",
	Long: `Execd turns planned trade intents into live bracket orders while
enforcing capital and risk limits.

It provides tools for:
  - Running simulated execution cycles against an in-memory venue
  - Validating and generating configuration files
  - Inspecting the attempt journal of past sessions
  - Risk-based position sizing and allocation planning`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
