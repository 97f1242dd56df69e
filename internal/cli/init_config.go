package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentinelops/macieguard/internal/config"
)

var initForce bool

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a commented default config file",
	Long:  "Writes the default configuration template to the given path, or to\nstdout when no path is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInitConfig,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Print(config.DefaultYAML())
		return nil
	}

	path := args[0]
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, []byte(config.DefaultYAML()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
