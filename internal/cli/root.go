// Package cli implements the macieguard command tree. The same binary
// runs every stage of the workflow locally: triage of finding events,
// the approval callback endpoint, payload execution, and the inbox
// daemon.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "macieguard",
	Short: "Automated remediation for sensitive-data findings",
	Long: "Routes sensitive-data findings through a remediation policy: low-risk\n" +
		"matches are quarantined automatically, everything else waits for a\n" +
		"human decision in Slack before the object is moved.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (optional; environment overrides apply)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
