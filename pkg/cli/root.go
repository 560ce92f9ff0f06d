// Package cli implements the gatewayd command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	configFile string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gatewayd",
	Short: "gatewayd is the worldmonitor desktop-local API gateway",
	Long: `gatewayd serves /api/ endpoints on a loopback port from locally installed
handler modules, transparently passing everything else through to the cloud
origin. A failing or missing local handler never surfaces as an error while
the cloud can still answer.

Configuration can be provided via flags, environment variables (GATEWAYD_*),
or a gatewayd.yaml configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to gatewayd.yaml (default: ./gatewayd.yaml)")
}
