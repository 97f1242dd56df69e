package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PayloadVersion is the current ExecutionPayload schema version.
const PayloadVersion = "1"

// ApprovalContext records the human action that authorised a
// remediation. Absent for auto-remediated findings. ResponseURL is
// where the outcome report goes when the channel relay provided one.
type ApprovalContext struct {
	Username    string `json:"username"`
	ResponseURL string `json:"response_url,omitempty"`
}

// ExecutionPayload is the handoff from the triage or approval stage to
// the execution stage. It travels over an at-least-once transport with
// no ordering guarantee, so it must be self-contained: the finding and
// the approval context are everything the executor needs.
type ExecutionPayload struct {
	Version      string           `json:"version"`
	InvocationID string           `json:"invocation_id"`
	DispatchedAt time.Time        `json:"dispatched_at"`
	Finding      Finding          `json:"finding"`
	Approval     *ApprovalContext `json:"approval,omitempty"`
}

// NewExecutionPayload builds a payload for dispatch, stamping a fresh
// invocation ID. approval is nil on the auto path.
func NewExecutionPayload(f *Finding, approval *ApprovalContext) *ExecutionPayload {
	return &ExecutionPayload{
		Version:      PayloadVersion,
		InvocationID: uuid.NewString(),
		DispatchedAt: time.Now().UTC(),
		Finding:      *f,
		Approval:     approval,
	}
}

// Validate checks that a received payload is usable by the executor.
func (p *ExecutionPayload) Validate() error {
	if p.Version != PayloadVersion {
		return fmt.Errorf("%w: unsupported payload version %q", ErrValidation, p.Version)
	}
	if p.Approval != nil && p.Approval.Username == "" {
		return fmt.Errorf("%w: approval context without username", ErrValidation)
	}
	return p.Finding.Validate()
}
