// The triage-handler function receives Macie finding events from
// EventBridge and routes each one through the remediation decision.
// Errors are logged and swallowed at this boundary: a finding the
// pipeline cannot handle must not be redelivered forever.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sentinelops/macieguard/internal/model"
	"github.com/sentinelops/macieguard/internal/wiring"
)

func main() {
	app, err := wiring.Build(context.Background(), os.Getenv("MACIEGUARD_CONFIG"))
	if err != nil {
		panic(err)
	}

	lambda.Start(func(ctx context.Context, event events.CloudWatchEvent) error {
		f, err := model.FindingFromEvent(event.Detail)
		if err != nil {
			app.Log.Error().Err(err).Str("event_id", event.ID).Msg("unusable finding event")
			return nil
		}
		if err := app.Dispatcher.Triage(ctx, f); err != nil {
			app.Log.Error().Err(err).Str("finding_id", f.ID).Msg("triage failed")
		}
		return nil
	})
}
