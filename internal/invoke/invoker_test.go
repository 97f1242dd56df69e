package invoke

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sentinelops/macieguard/internal/model"
)

func testPayload() *model.ExecutionPayload {
	return &model.ExecutionPayload{
		Version:      model.PayloadVersion,
		InvocationID: "inv-1",
		Finding: model.Finding{
			ID:       "f-1",
			Category: model.CategoryClassification,
			ResourcesAffected: model.ResourcesAffected{
				S3Bucket: model.S3Bucket{Name: "b"},
				S3Object: model.S3Object{Key: "k", Path: "b/k"},
			},
		},
	}
}

func TestInboxInvokerWritesFinalFileOnly(t *testing.T) {
	dir := t.TempDir()
	inv := NewInboxInvoker(filepath.Join(dir, "inbox"))

	if err := inv.Invoke(context.Background(), testPayload()); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "inbox"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one file, got %d", len(entries))
	}
	name := entries[0].Name()
	if name != "inv-1.json" {
		t.Errorf("expected inv-1.json, got %s", name)
	}
	if strings.HasSuffix(name, ".tmp") {
		t.Error("temp file must not survive a successful invoke")
	}
}

func TestInboxPayloadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	inv := NewInboxInvoker(dir)

	p := testPayload()
	p.Approval = &model.ApprovalContext{Username: "jsmith", ResponseURL: "https://hooks.example/r"}
	if err := inv.Invoke(context.Background(), p); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "inv-1.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got model.ExecutionPayload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("round-tripped payload must validate: %v", err)
	}
	if got.Finding.ID != "f-1" || got.Approval == nil || got.Approval.Username != "jsmith" {
		t.Errorf("payload did not survive the round trip: %+v", got)
	}
}

func TestInboxInvokeOverwriteIsSafe(t *testing.T) {
	// Duplicate delivery of the same invocation overwrites in place.
	dir := t.TempDir()
	inv := NewInboxInvoker(dir)

	if err := inv.Invoke(context.Background(), testPayload()); err != nil {
		t.Fatal(err)
	}
	if err := inv.Invoke(context.Background(), testPayload()); err != nil {
		t.Fatalf("second invoke: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected a single file after duplicate delivery, got %d", len(entries))
	}
}
