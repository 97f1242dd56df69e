// Package triage classifies incoming findings and selects the
// remediation path.
package triage

import (
	"fmt"

	"github.com/sentinelops/macieguard/internal/model"
)

// Result is the outcome of a triage decision, with a human-readable
// reason for the audit trail.
type Result struct {
	Decision model.Decision
	Reason   string
}

// Engine decides skip / auto / manual for a finding. Pure: a function
// of the finding and two immutable configuration values.
type Engine struct {
	policy    map[string]model.PolicyAction
	threshold model.Threshold
}

// NewEngine creates an engine from the loaded policy map and severity
// threshold.
func NewEngine(policy map[string]model.PolicyAction, threshold model.Threshold) *Engine {
	return &Engine{policy: policy, threshold: threshold}
}

// Decide classifies one finding.
//
// Evaluation order (must not be changed):
//  1. Category gate — only classification findings are in scope
//  2. Severity threshold — the asymmetric two-clause rule below
//  3. Policy lookup — AUTO only on exact match, absent keys are MANUAL
//
// The threshold rule is applied for every (score, threshold) pair:
// skip when (score < 2 and threshold != LOW) or
// (score < 3 and threshold == HIGH). A MEDIUM and a HIGH threshold
// filter identically for scores >= 3; that asymmetry is intentional
// and pending product clarification, not a bug to fix here.
func (e *Engine) Decide(f *model.Finding) Result {
	if f.Category != model.CategoryClassification {
		return Result{
			Decision: model.Skip,
			Reason:   fmt.Sprintf("category %q is not a data classification finding", f.Category),
		}
	}

	score := f.Severity.Score
	if (score < 2 && e.threshold != model.ThresholdLow) ||
		(score < 3 && e.threshold == model.ThresholdHigh) {
		return Result{
			Decision: model.Skip,
			Reason:   fmt.Sprintf("severity score %d below %s threshold", score, e.threshold),
		}
	}

	if e.policy[f.Type] == model.ActionAuto {
		return Result{
			Decision: model.Auto,
			Reason:   fmt.Sprintf("type %q is configured for auto-remediation", f.Type),
		}
	}
	return Result{
		Decision: model.Manual,
		Reason:   fmt.Sprintf("type %q requires manual authorisation", f.Type),
	}
}
