package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version задаётся при сборке: -ldflags "-X main.version=v1.2.0"
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of budgetbot",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "budgetbot version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
