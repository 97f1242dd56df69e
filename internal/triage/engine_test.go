package triage

import (
	"testing"

	"github.com/sentinelops/macieguard/internal/model"
)

func classificationFinding(score int64, findingType string) *model.Finding {
	return &model.Finding{
		ID:       "f-1",
		Category: model.CategoryClassification,
		Type:     findingType,
		Severity: model.Severity{Score: score, Description: "High"},
		ResourcesAffected: model.ResourcesAffected{
			S3Bucket: model.S3Bucket{Name: "b"},
			S3Object: model.S3Object{Key: "k", Path: "b/k"},
		},
	}
}

func TestNonClassificationAlwaysSkipped(t *testing.T) {
	e := NewEngine(map[string]model.PolicyAction{"X": model.ActionAuto}, model.ThresholdLow)
	for _, category := range []string{"POLICY", "", "classification"} {
		f := classificationFinding(5, "X")
		f.Category = category
		if got := e.Decide(f); got.Decision != model.Skip {
			t.Errorf("category %q: expected skip, got %s", category, got.Decision)
		}
	}
}

func TestSeverityThresholdRule(t *testing.T) {
	// Skip exactly when (score<2 && threshold!=LOW) || (score<3 && threshold==HIGH),
	// for every pair. The rule is asymmetric on purpose.
	for _, threshold := range []model.Threshold{model.ThresholdLow, model.ThresholdMedium, model.ThresholdHigh} {
		e := NewEngine(nil, threshold)
		for score := int64(0); score <= 5; score++ {
			wantSkip := (score < 2 && threshold != model.ThresholdLow) ||
				(score < 3 && threshold == model.ThresholdHigh)

			got := e.Decide(classificationFinding(score, "Y"))
			if wantSkip && got.Decision != model.Skip {
				t.Errorf("score=%d threshold=%s: expected skip, got %s", score, threshold, got.Decision)
			}
			if !wantSkip && got.Decision == model.Skip {
				t.Errorf("score=%d threshold=%s: unexpected skip: %s", score, threshold, got.Reason)
			}
		}
	}
}

func TestMediumAndHighFilterIdenticallyAtScoreThree(t *testing.T) {
	med := NewEngine(nil, model.ThresholdMedium).Decide(classificationFinding(3, "Y"))
	high := NewEngine(nil, model.ThresholdHigh).Decide(classificationFinding(3, "Y"))
	if med.Decision != high.Decision {
		t.Errorf("expected identical filtering at score 3, got %s vs %s", med.Decision, high.Decision)
	}
}

func TestPolicyLookup(t *testing.T) {
	policy := map[string]model.PolicyAction{
		"SensitiveData:S3Object/Credentials": model.ActionAuto,
		"SensitiveData:S3Object/Personal":    model.ActionManual,
	}
	e := NewEngine(policy, model.ThresholdLow)

	if got := e.Decide(classificationFinding(5, "SensitiveData:S3Object/Credentials")); got.Decision != model.Auto {
		t.Errorf("expected auto for AUTO-mapped type, got %s", got.Decision)
	}
	if got := e.Decide(classificationFinding(5, "SensitiveData:S3Object/Personal")); got.Decision != model.Manual {
		t.Errorf("expected manual for MANUAL-mapped type, got %s", got.Decision)
	}
	// Absent key defaults to manual.
	if got := e.Decide(classificationFinding(5, "SensitiveData:S3Object/Financial")); got.Decision != model.Manual {
		t.Errorf("expected manual for unmapped type, got %s", got.Decision)
	}
}

func TestNilPolicyDefaultsToManual(t *testing.T) {
	e := NewEngine(nil, model.ThresholdLow)
	if got := e.Decide(classificationFinding(5, "anything")); got.Decision != model.Manual {
		t.Errorf("expected manual with nil policy, got %s", got.Decision)
	}
}
