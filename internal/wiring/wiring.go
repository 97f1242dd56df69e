// Package wiring assembles the pipeline from configuration. Both the
// CLI commands and the deployed function entrypoints build the same
// graph; they differ only in which stage they drive.
package wiring

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/sentinelops/macieguard/internal/audit"
	"github.com/sentinelops/macieguard/internal/config"
	"github.com/sentinelops/macieguard/internal/dispatch"
	"github.com/sentinelops/macieguard/internal/findings"
	"github.com/sentinelops/macieguard/internal/gateway"
	"github.com/sentinelops/macieguard/internal/invoke"
	"github.com/sentinelops/macieguard/internal/logging"
	"github.com/sentinelops/macieguard/internal/notify"
	"github.com/sentinelops/macieguard/internal/remediate"
	"github.com/sentinelops/macieguard/internal/sigverify"
	"github.com/sentinelops/macieguard/internal/storage"
	"github.com/sentinelops/macieguard/internal/triage"
)

// App is the wired pipeline.
type App struct {
	Cfg        *config.Config
	Log        zerolog.Logger
	Dispatcher *dispatch.Dispatcher
	Gateway    *gateway.Gateway
	Trail      *audit.Log
}

// Build loads configuration from path (optional) and the environment,
// then wires the full pipeline.
func Build(ctx context.Context, path string) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log := logging.Init(cfg.Log.Level, cfg.Log.Format)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var trail *audit.Log
	if cfg.AuditLog != "" {
		trail, err = audit.Open(cfg.AuditLog)
		if err != nil {
			return nil, err
		}
	}

	var invoker invoke.Invoker
	switch cfg.Invoker.Mode {
	case "lambda":
		invoker = invoke.NewLambdaInvoker(awslambda.NewFromConfig(awsCfg), cfg.Invoker.Function)
	case "inbox":
		if cfg.Invoker.InboxDir == "" {
			return nil, fmt.Errorf("invoker mode \"inbox\" requires inbox_dir")
		}
		invoker = invoke.NewInboxInvoker(cfg.Invoker.InboxDir)
	}

	dispatcher := dispatch.New(dispatch.Config{
		Engine:     triage.NewEngine(cfg.Policy(), cfg.MinSeverity),
		Composer:   notify.NewComposer(cfg.Slack.Channel, cfg.QuarantineBucket, cfg.ConsoleBaseURL),
		Executor:   remediate.NewExecutor(storage.NewS3Store(s3.NewFromConfig(awsCfg)), cfg.QuarantineBucket),
		Invoker:    invoker,
		WebhookURL: cfg.Slack.WebhookURL,
		Trail:      trail,
		Logger:     logging.Component("dispatch"),
	})

	gw := gateway.New(
		sigverify.New(cfg.Slack.SigningSecret),
		findings.NewMacieSource(macie2.NewFromConfig(awsCfg)),
		invoker,
		trail,
		logging.Component("gateway"))

	return &App{
		Cfg:        cfg,
		Log:        log,
		Dispatcher: dispatcher,
		Gateway:    gw,
		Trail:      trail,
	}, nil
}

// Close releases resources held by the wired pipeline.
func (a *App) Close() {
	if a.Trail != nil {
		_ = a.Trail.Close()
	}
}
