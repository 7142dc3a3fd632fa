// Package main is the entry point for the home maintenance portal. The
// default command serves the web portal; other commands rank categories
// from the terminal and manage the database.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "maintportal",
	Short: "Home maintenance record tracker",
	Long: `maintportal keeps the service history of a home (plumbing, roof,
heating, ...) and ranks categories by how overdue their next service is.

Configuration is read from environment variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, rankCmd, migrateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
