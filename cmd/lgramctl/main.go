package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lgramweb/lgram-web/cmd/lgramctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "lgramctl",
		Short: "Maintenance tool for the lgram web service",
		Long:  "CLI tool for retention sweeps, audit statistics and user data exports",
	}

	rootCmd.AddCommand(commands.NewCleanupCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())
	rootCmd.AddCommand(commands.NewSummaryCmd())
	rootCmd.AddCommand(commands.NewExportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
