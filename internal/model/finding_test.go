package model

import (
	"errors"
	"testing"
)

const sampleEvent = `{
  "version": "0",
  "detail-type": "Macie Finding",
  "source": "aws.macie",
  "detail": {
    "id": "f-1234",
    "accountId": "123456789012",
    "region": "us-east-1",
    "category": "CLASSIFICATION",
    "type": "SensitiveData:S3Object/Personal",
    "title": "The S3 object contains personal information",
    "severity": {"score": 3, "description": "High"},
    "updatedAt": "2023-05-01T12:00:00Z",
    "resourcesAffected": {
      "s3Bucket": {"name": "corp-data"},
      "s3Object": {"key": "exports/users.csv", "path": "corp-data/exports/users.csv"}
    }
  }
}`

func TestFindingFromEventEnvelope(t *testing.T) {
	f, err := FindingFromEvent([]byte(sampleEvent))
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if f.ID != "f-1234" {
		t.Errorf("expected id f-1234, got %s", f.ID)
	}
	if f.Category != CategoryClassification {
		t.Errorf("expected CLASSIFICATION, got %s", f.Category)
	}
	if f.Severity.Score != 3 {
		t.Errorf("expected score 3, got %d", f.Severity.Score)
	}
	if f.ResourcesAffected.S3Bucket.Name != "corp-data" {
		t.Errorf("expected bucket corp-data, got %s", f.ResourcesAffected.S3Bucket.Name)
	}
}

func TestFindingFromBareDocument(t *testing.T) {
	bare := `{
	  "id": "f-9",
	  "category": "CLASSIFICATION",
	  "severity": {"score": 1, "description": "Low"},
	  "resourcesAffected": {
	    "s3Bucket": {"name": "b"},
	    "s3Object": {"key": "k", "path": "b/k"}
	  }
	}`
	f, err := FindingFromEvent([]byte(bare))
	if err != nil {
		t.Fatalf("parse bare finding: %v", err)
	}
	if f.ID != "f-9" {
		t.Errorf("expected id f-9, got %s", f.ID)
	}
}

func TestFindingFromEventRejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"no id":     `{"category":"CLASSIFICATION","resourcesAffected":{"s3Bucket":{"name":"b"},"s3Object":{"key":"k"}}}`,
		"no bucket": `{"id":"f-1","resourcesAffected":{"s3Object":{"key":"k"}}}`,
		"no key":    `{"id":"f-1","resourcesAffected":{"s3Bucket":{"name":"b"}}}`,
		"garbage":   `not json`,
	}
	for name, doc := range cases {
		if _, err := FindingFromEvent([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		} else if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestParseThreshold(t *testing.T) {
	for _, s := range []string{"LOW", "MEDIUM", "HIGH"} {
		if _, err := ParseThreshold(s); err != nil {
			t.Errorf("expected %s to parse, got %v", s, err)
		}
	}
	if _, err := ParseThreshold("medium"); err == nil {
		t.Error("expected lowercase threshold to be rejected")
	}
	if _, err := ParseThreshold(""); err == nil {
		t.Error("expected empty threshold to be rejected")
	}
}

func TestExecutionPayloadValidate(t *testing.T) {
	f := Finding{
		ID:                "f-1",
		Category:          CategoryClassification,
		ResourcesAffected: ResourcesAffected{S3Bucket: S3Bucket{Name: "b"}, S3Object: S3Object{Key: "k"}},
	}

	p := ExecutionPayload{Version: PayloadVersion, Finding: f}
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid payload, got %v", err)
	}

	p.Version = "2"
	if err := p.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown version, got %v", err)
	}

	p.Version = PayloadVersion
	p.Approval = &ApprovalContext{}
	if err := p.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty approver, got %v", err)
	}
}
