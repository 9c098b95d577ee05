// Package cmd implements the command-line interface for yt-monitor: the
// monitoring daemon itself plus subcommands for managing the account list.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped during build via -ldflags "-X ...cmd.Version=X.Y.Z"
var Version = "dev"

var (
	cfgFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "yt-monitor",
		Short: "Watch channels and download new videos as they appear",
		Long: `yt-monitor polls the configured YouTube and Bilibili accounts on a
per-account schedule, downloads every video it has not seen before with
yt-dlp, and remembers what it already fetched across restarts.

Invoked without a subcommand it runs the daemon, same as "yt-monitor run".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("yt-monitor %s\n", Version)
		},
	})

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newAccountsCommand())
}
