package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinelops/macieguard/internal/daemon"
	"github.com/sentinelops/macieguard/internal/logging"
)

var (
	daemonPoll         bool
	daemonPollInterval time.Duration
)

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().BoolVar(&daemonPoll, "poll", false, "Poll the inbox instead of using filesystem notifications")
	daemonCmd.Flags().DurationVar(&daemonPollInterval, "poll-interval", 0, "Polling interval (implies --poll semantics only with --poll)")
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the local execution loop",
	Long: "Watches the configured inbox directory for execution payloads\n" +
		"dispatched by triage or approval (invoker mode \"inbox\") and runs\n" +
		"each one through quarantine and outcome reporting.",
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Cfg.Invoker.InboxDir == "" {
		return fmt.Errorf("daemon requires invoker inbox_dir")
	}

	d, err := daemon.New(daemon.Config{
		Inbox:        app.Cfg.Invoker.InboxDir,
		Poll:         daemonPoll,
		PollInterval: daemonPollInterval,
		Runner:       app.Dispatcher,
		Logger:       logging.Component("daemon"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Log.Info().Str("inbox", app.Cfg.Invoker.InboxDir).Msg("daemon watching inbox")
	return d.Run(ctx)
}
