package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the execd CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("execd version %s\n", version)
		fmt.Println("Execution core for an automated trading platform")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
