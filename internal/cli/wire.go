package cli

import (
	"context"

	"github.com/sentinelops/macieguard/internal/wiring"
)

// buildApp wires the pipeline from the --config flag and environment.
func buildApp(ctx context.Context) (*wiring.App, error) {
	return wiring.Build(ctx, configPath)
}
