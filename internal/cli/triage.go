package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentinelops/macieguard/internal/model"
)

func init() {
	rootCmd.AddCommand(triageCmd)
}

var triageCmd = &cobra.Command{
	Use:   "triage [event.json]",
	Short: "Run the remediation decision on a finding event",
	Long: "Reads a Macie finding event (EventBridge envelope or bare finding\n" +
		"document) from the file argument or stdin, decides skip, auto, or\n" +
		"manual, and routes the result: auto dispatches execution, manual\n" +
		"posts an approval request to Slack.",
	Args: cobra.MaximumNArgs(1),
	RunE: runTriage,
}

func runTriage(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}

	f, err := model.FindingFromEvent(data)
	if err != nil {
		return err
	}

	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Dispatcher.Triage(cmd.Context(), f)
}
