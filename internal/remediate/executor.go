// Package remediate performs the quarantine operation: copy the
// exposed object into the quarantine bucket, then delete it from its
// original location. The two steps are not transactional and the
// outcome type says exactly how far the operation got.
package remediate

import (
	"context"
	"time"

	"github.com/sentinelops/macieguard/internal/model"
	"github.com/sentinelops/macieguard/internal/storage"
)

// Status classifies how a quarantine attempt ended.
type Status string

const (
	// StatusSuccess: copy and delete both succeeded.
	StatusSuccess Status = "success"
	// StatusPartialFailure: the copy succeeded but the delete failed.
	// The object is duplicated — present in quarantine AND still
	// exposed at its original location. Requires operator attention;
	// never fold this into success.
	StatusPartialFailure Status = "partial_failure"
	// StatusFailure: the copy failed. The original object is
	// untouched and no delete was attempted.
	StatusFailure Status = "failure"
)

// Outcome is the result of one quarantine attempt. Error fields are
// strings so the outcome serialises into the execution report.
type Outcome struct {
	Status           Status    `json:"status"`
	Bucket           string    `json:"bucket"`
	Key              string    `json:"key"`
	QuarantineBucket string    `json:"quarantine_bucket"`
	QuarantineKey    string    `json:"quarantine_key"`
	CopyError        string    `json:"copy_error,omitempty"`
	DeleteError      string    `json:"delete_error,omitempty"`
	CompletedAt      time.Time `json:"completed_at"`
}

// Err maps the outcome back into the error taxonomy: nil on success,
// PartialRemediationError on a failed delete, TransientError on a
// failed copy.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusPartialFailure:
		return &model.PartialRemediationError{
			Bucket:           o.Bucket,
			Key:              o.Key,
			QuarantineBucket: o.QuarantineBucket,
			QuarantineKey:    o.QuarantineKey,
			Err:              stringErr(o.DeleteError),
		}
	case StatusFailure:
		return &model.TransientError{Op: "quarantine copy", Err: stringErr(o.CopyError)}
	default:
		return nil
	}
}

// Executor moves exposed objects into the quarantine bucket.
type Executor struct {
	store            storage.ObjectStore
	quarantineBucket string
}

// NewExecutor creates an executor targeting the quarantine bucket.
func NewExecutor(store storage.ObjectStore, quarantineBucket string) *Executor {
	return &Executor{store: store, quarantineBucket: quarantineBucket}
}

// Quarantine copies (bucket, key) to the quarantine bucket under the
// key "{bucket}/{key}" — preserving provenance — then deletes the
// original. No rollback of the copy and no retry of the delete: a
// partial failure is reported as such and left for an operator.
func (e *Executor) Quarantine(ctx context.Context, bucket, key string) Outcome {
	out := Outcome{
		Bucket:           bucket,
		Key:              key,
		QuarantineBucket: e.quarantineBucket,
		QuarantineKey:    bucket + "/" + key,
	}

	if err := e.store.Copy(ctx, bucket, key, e.quarantineBucket, out.QuarantineKey); err != nil {
		out.Status = StatusFailure
		out.CopyError = err.Error()
		out.CompletedAt = time.Now().UTC()
		return out
	}

	if err := e.store.Delete(ctx, bucket, key); err != nil {
		out.Status = StatusPartialFailure
		out.DeleteError = err.Error()
		out.CompletedAt = time.Now().UTC()
		return out
	}

	out.Status = StatusSuccess
	out.CompletedAt = time.Now().UTC()
	return out
}

type stringError string

func (s stringError) Error() string { return string(s) }

func stringErr(s string) error {
	if s == "" {
		return stringError("unknown")
	}
	return stringError(s)
}
