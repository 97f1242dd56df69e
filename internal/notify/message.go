// Package notify renders the Slack messages this workflow sends: the
// approval request that asks a human to authorise a quarantine, and
// the outcome report posted after the executor runs. Composition is
// pure; delivery lives in webhook.go.
package notify

import (
	"fmt"

	"github.com/sentinelops/macieguard/internal/model"
	"github.com/sentinelops/macieguard/internal/remediate"
)

const botName = "MacieGuard"

// Message is a Slack chat.postMessage-shaped document.
type Message struct {
	Channel  string           `json:"channel,omitempty"`
	Text     string           `json:"text"`
	Username string           `json:"username,omitempty"`
	Mrkdwn   bool             `json:"mrkdwn"`
	AsUser   bool             `json:"as_user"`
	Blocks   []map[string]any `json:"blocks"`
}

// Composer builds messages from findings and outcomes.
type Composer struct {
	channel          string
	quarantineBucket string
	consoleBaseURL   string
}

// NewComposer creates a composer for the configured channel and
// quarantine target.
func NewComposer(channel, quarantineBucket, consoleBaseURL string) *Composer {
	return &Composer{
		channel:          channel,
		quarantineBucket: quarantineBucket,
		consoleBaseURL:   consoleBaseURL,
	}
}

// ApprovalRequest renders the manual-authorisation message. The
// finding ID rides as the action button value; it is the only state
// that survives until the callback comes back, so it must round-trip
// through the channel unmodified.
func (c *Composer) ApprovalRequest(f *model.Finding) Message {
	objectPath := f.ResourcesAffected.S3Object.Path

	blocks := []map[string]any{
		section("section1", fmt.Sprintf("*Finding in %s for Acct: %s*", f.Region, f.AccountID)),
		section("section2", fmt.Sprintf(
			"*Offending Object:* `S3://%s` \n*Finding:* %s\n <%s| View Finding in Console>",
			objectPath, f.Description, c.consoleLink(f))),
		fieldGrid(f),
		{
			"type": "actions",
			"elements": []any{
				map[string]any{
					"type":  "button",
					"text":  map[string]any{"type": "plain_text", "text": "Remediate", "emoji": true},
					"value": f.ID,
				},
			},
		},
		{
			"type": "context",
			"elements": []any{
				map[string]any{
					"type": "mrkdwn",
					"text": fmt.Sprintf(
						"*WARNING*: Clicking \"Remediate\" will move the offending object into quarantine bucket: *S3://%s* with restricted permissions",
						c.quarantineBucket),
				},
			},
		},
		{"type": "divider"},
	}

	return Message{
		Channel:  c.channel,
		Text:     f.Title,
		Username: botName,
		Mrkdwn:   true,
		Blocks:   blocks,
	}
}

// OutcomeReport renders the post-execution message. Automatic and
// human-approved remediations are worded differently, the approver is
// attributed when present, and a partial failure is never dressed up
// as success.
func (c *Composer) OutcomeReport(f *model.Finding, out remediate.Outcome, approval *model.ApprovalContext) Message {
	headline := c.headline(f, out, approval)
	objectPath := f.ResourcesAffected.S3Object.Path

	var body string
	if approval != nil {
		body = fmt.Sprintf("Remediation authorised by: @%s \n", approval.Username)
	}
	switch out.Status {
	case remediate.StatusSuccess:
		body += fmt.Sprintf("Offending Object: `S3://%s` has been isolated to quarantine bucket: `S3://%s/%s`",
			objectPath, out.QuarantineBucket, out.QuarantineKey)
	case remediate.StatusPartialFailure:
		body += fmt.Sprintf("Offending Object: `S3://%s` was copied to `S3://%s/%s` but could *not* be removed from its original location — the object is now duplicated and still exposed. Operator action required.\nDelete error: %s",
			objectPath, out.QuarantineBucket, out.QuarantineKey, out.DeleteError)
	default:
		body += fmt.Sprintf("Offending Object: `S3://%s` could *not* be copied to quarantine; the original object is untouched.\nCopy error: %s",
			objectPath, out.CopyError)
	}
	body += fmt.Sprintf(" \n <%s| View Finding in Console>", c.consoleLink(f))

	blocks := []map[string]any{
		section("section1", headline),
		section("section2", body),
		fieldGrid(f),
		{"type": "divider"},
	}

	return Message{
		Channel:  c.channel,
		Text:     headline,
		Username: botName,
		Mrkdwn:   true,
		Blocks:   blocks,
	}
}

func (c *Composer) headline(f *model.Finding, out remediate.Outcome, approval *model.ApprovalContext) string {
	where := fmt.Sprintf("in %s for Acct: %s", f.Region, f.AccountID)
	switch out.Status {
	case remediate.StatusSuccess:
		if approval != nil {
			return fmt.Sprintf("*Finding REMEDIATED %s* :white_check_mark:", where)
		}
		return fmt.Sprintf("*Finding AUTO-REMEDIATED %s* :white_check_mark:", where)
	case remediate.StatusPartialFailure:
		return fmt.Sprintf("*Finding PARTIALLY remediated %s — object duplicated* :warning:", where)
	default:
		return fmt.Sprintf("*Remediation FAILED %s* :x:", where)
	}
}

func (c *Composer) consoleLink(f *model.Finding) string {
	return fmt.Sprintf("%s/home?region=%s#/findings?itemId=%s", c.consoleBaseURL, f.Region, f.ID)
}

func section(blockID, text string) map[string]any {
	return map[string]any{
		"type":     "section",
		"block_id": blockID,
		"text":     map[string]any{"type": "mrkdwn", "text": text},
	}
}

// fieldGrid renders the severity / region / account / category / type
// / time grid shared by both message kinds. The timestamp is the
// finding's own, formatted with Slack's date token so the reader's
// client localises it.
func fieldGrid(f *model.Finding) map[string]any {
	findingTime := fmt.Sprintf("<!date^%d^{date} at {time} | %s>",
		f.UpdatedAt.Unix(), f.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))

	return map[string]any{
		"type":     "section",
		"block_id": "section3",
		"fields": []any{
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Severity:*  `%s`", f.Severity.Description)},
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Region:* %s", f.Region)},
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Account Number:* %s", f.AccountID)},
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Finding Category:* %s", f.Category)},
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Finding Type:* %s", f.Type)},
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Finding Time:* %s", findingTime)},
		},
	}
}
