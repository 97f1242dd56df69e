// The remediator function consumes execution payloads dispatched by
// triage or approval and performs the quarantine. The outcome is
// reported to Slack by the execution stage itself; a failure here is
// logged and not returned, because delivery is at-least-once and
// nothing downstream retries a remediation.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sentinelops/macieguard/internal/model"
	"github.com/sentinelops/macieguard/internal/wiring"
)

func main() {
	app, err := wiring.Build(context.Background(), os.Getenv("MACIEGUARD_CONFIG"))
	if err != nil {
		panic(err)
	}

	lambda.Start(func(ctx context.Context, p model.ExecutionPayload) error {
		if err := app.Dispatcher.Execute(ctx, &p); err != nil {
			app.Log.Error().
				Err(err).
				Str("invocation_id", p.InvocationID).
				Str("finding_id", p.Finding.ID).
				Msg("remediation failed")
		}
		return nil
	})
}
