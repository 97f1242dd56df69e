package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// CategoryClassification marks findings produced by a sensitive data
// discovery job. Only these are in scope for remediation.
const CategoryClassification = "CLASSIFICATION"

// Threshold is the configured minimum severity level.
type Threshold string

const (
	ThresholdLow    Threshold = "LOW"
	ThresholdMedium Threshold = "MEDIUM"
	ThresholdHigh   Threshold = "HIGH"
)

// ParseThreshold validates a threshold string. Fail-closed: unknown
// values are rejected rather than defaulted.
func ParseThreshold(s string) (Threshold, error) {
	switch Threshold(s) {
	case ThresholdLow, ThresholdMedium, ThresholdHigh:
		return Threshold(s), nil
	default:
		return "", fmt.Errorf("unknown severity threshold %q", s)
	}
}

// PolicyAction is the configured remediation path for a finding type.
type PolicyAction string

const (
	ActionAuto   PolicyAction = "AUTO"
	ActionManual PolicyAction = "MANUAL"
)

// Decision is the triage outcome for a single finding.
type Decision string

const (
	Skip   Decision = "skip"
	Auto   Decision = "auto"
	Manual Decision = "manual"
)

// Severity carries Macie's ordinal score and its descriptive label.
type Severity struct {
	Score       int64  `json:"score"`
	Description string `json:"description"`
}

// S3Bucket identifies the bucket holding the exposed object.
type S3Bucket struct {
	Name string `json:"name"`
	Arn  string `json:"arn,omitempty"`
}

// S3Object identifies the exposed object. Path is the display form
// "bucket/key" used in notifications.
type S3Object struct {
	Key  string `json:"key"`
	Path string `json:"path"`
	ETag string `json:"eTag,omitempty"`
}

// ResourcesAffected locates the resource a finding refers to.
type ResourcesAffected struct {
	S3Bucket S3Bucket `json:"s3Bucket"`
	S3Object S3Object `json:"s3Object"`
}

// Finding is an immutable sensitive-data exposure record as emitted by
// the detection source. This system never persists findings; when one
// is needed after the original event (approval time), it is re-fetched
// by ID.
type Finding struct {
	ID                string            `json:"id"`
	AccountID         string            `json:"accountId"`
	Region            string            `json:"region"`
	Category          string            `json:"category"`
	Type              string            `json:"type"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Severity          Severity          `json:"severity"`
	Count             int64             `json:"count,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	ResourcesAffected ResourcesAffected `json:"resourcesAffected"`
}

// Validate checks the fields every pipeline stage relies on.
func (f *Finding) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("%w: finding id is required", ErrValidation)
	}
	if f.ResourcesAffected.S3Bucket.Name == "" {
		return fmt.Errorf("%w: affected bucket is required", ErrValidation)
	}
	if f.ResourcesAffected.S3Object.Key == "" {
		return fmt.Errorf("%w: affected object key is required", ErrValidation)
	}
	return nil
}

// FindingFromEvent extracts the finding from an EventBridge envelope.
// The detail field carries the finding verbatim; a bare finding
// document (no envelope) is also accepted so local replays work.
func FindingFromEvent(data []byte) (*Finding, error) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: parse event: %v", ErrValidation, err)
	}
	raw := envelope.Detail
	if len(raw) == 0 {
		raw = data
	}

	var f Finding
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: parse finding: %v", ErrValidation, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
