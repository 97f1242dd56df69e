package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentinelops/macieguard/internal/model"
)

func init() {
	rootCmd.AddCommand(remediateCmd)
}

var remediateCmd = &cobra.Command{
	Use:   "remediate <payload.json>",
	Short: "Execute one remediation payload",
	Long: "Runs the execution stage on a dispatched payload file: copies the\n" +
		"object into the quarantine bucket, deletes the original, and reports\n" +
		"the outcome to Slack.",
	Args: cobra.ExactArgs(1),
	RunE: runRemediate,
}

func runRemediate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	var p model.ExecutionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Dispatcher.Execute(cmd.Context(), &p)
}
