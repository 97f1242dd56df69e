// Package dispatch is the orchestration glue between the pipeline
// stages: it routes triage decisions to the execution transport or the
// approval channel, and runs the execution stage end to end.
package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sentinelops/macieguard/internal/audit"
	"github.com/sentinelops/macieguard/internal/invoke"
	"github.com/sentinelops/macieguard/internal/model"
	"github.com/sentinelops/macieguard/internal/notify"
	"github.com/sentinelops/macieguard/internal/remediate"
	"github.com/sentinelops/macieguard/internal/triage"
)

// Sender delivers a composed message to a webhook URL. Swappable for
// tests; defaults to notify.Send.
type Sender func(url string, msg notify.Message) error

// Config wires a Dispatcher. Trail is optional.
type Config struct {
	Engine     *triage.Engine
	Composer   *notify.Composer
	Executor   *remediate.Executor
	Invoker    invoke.Invoker
	WebhookURL string
	Trail      *audit.Log
	Send       Sender
	Logger     zerolog.Logger
}

// Dispatcher routes findings through the pipeline.
type Dispatcher struct {
	cfg Config
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Send == nil {
		cfg.Send = notify.Send
	}
	return &Dispatcher{cfg: cfg}
}

// Triage runs the decision engine on one finding and routes the
// result. Auto findings are handed to the execution transport; manual
// findings produce an approval request in the chat channel. A failure
// to compose or deliver the notification is logged and the event
// dropped — it must never crash the triage path.
func (d *Dispatcher) Triage(ctx context.Context, f *model.Finding) error {
	res := d.cfg.Engine.Decide(f)

	d.cfg.Logger.Info().
		Str("finding_id", f.ID).
		Str("decision", string(res.Decision)).
		Str("reason", res.Reason).
		Msg("triage decision")
	d.record(audit.Entry{
		Stage:    audit.StageTriage,
		Object:   auditObject(f),
		Decision: string(res.Decision),
		Reason:   res.Reason,
	})

	switch res.Decision {
	case model.Auto:
		p := model.NewExecutionPayload(f, nil)
		if err := d.cfg.Invoker.Invoke(ctx, p); err != nil {
			return fmt.Errorf("dispatch execution: %w", err)
		}
		return nil

	case model.Manual:
		msg := d.cfg.Composer.ApprovalRequest(f)
		if err := d.cfg.Send(d.cfg.WebhookURL, msg); err != nil {
			d.cfg.Logger.Error().
				Err(err).
				Str("finding_id", f.ID).
				Msg("approval request not delivered; finding dropped")
		}
		return nil

	default:
		return nil
	}
}

// Execute runs the execution stage: quarantine, then report the
// outcome to the chat channel. The outcome report goes to the
// callback's response URL when the remediation was human-approved,
// otherwise to the configured webhook. Partial failure is returned as
// a distinct error so the stage boundary logs it as such.
func (d *Dispatcher) Execute(ctx context.Context, p *model.ExecutionPayload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f := &p.Finding

	out := d.cfg.Executor.Quarantine(ctx,
		f.ResourcesAffected.S3Bucket.Name,
		f.ResourcesAffected.S3Object.Key)

	evt := d.cfg.Logger.Info()
	if out.Status != remediate.StatusSuccess {
		evt = d.cfg.Logger.Error()
	}
	evt.Str("finding_id", f.ID).
		Str("status", string(out.Status)).
		Str("quarantine_key", out.QuarantineKey).
		Msg("quarantine completed")

	entry := audit.Entry{
		InvocationID: p.InvocationID,
		Stage:        audit.StageExecution,
		Object:       auditObject(f),
		Outcome:      string(out.Status),
	}
	if p.Approval != nil {
		entry.Actor = p.Approval.Username
	}
	d.record(entry)

	msg := d.cfg.Composer.OutcomeReport(f, out, p.Approval)
	url := d.cfg.WebhookURL
	if p.Approval != nil && p.Approval.ResponseURL != "" {
		url = p.Approval.ResponseURL
	}
	if err := d.cfg.Send(url, msg); err != nil {
		d.cfg.Logger.Error().
			Err(err).
			Str("finding_id", f.ID).
			Msg("outcome report not delivered")
	}

	return out.Err()
}

func (d *Dispatcher) record(entry audit.Entry) {
	if d.cfg.Trail == nil {
		return
	}
	if err := d.cfg.Trail.Record(entry); err != nil {
		d.cfg.Logger.Error().Err(err).Msg("audit record failed")
	}
}

func auditObject(f *model.Finding) audit.Object {
	return audit.Object{
		FindingID: f.ID,
		Bucket:    f.ResourcesAffected.S3Bucket.Name,
		Key:       f.ResourcesAffected.S3Object.Key,
	}
}
