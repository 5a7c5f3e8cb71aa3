package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bridge-server",
	Short: "Bridge simulator server: session state sync over WebSocket",
	Long:  `HTTP + WebSocket API for the tabletop bridge simulator. Commands: api, migrate, seed.`,
	RunE:  runAPI, // default: run API (same as "bridge-server api")
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(commandCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}
