package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes each stage distinguishes.
// Stages match with errors.Is and decide at their boundary whether to
// reject (validation, authentication) or log and exit cleanly.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
)

// TransientError wraps a failed call to a remote dependency (object
// store, finding source, invoke transport, chat webhook). There is no
// retry built into this system; at-least-once redelivery from the
// triggering transport is the only retry mechanism.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PartialRemediationError reports a quarantine where the copy
// succeeded but the delete failed: the object now exists in two
// places. Never treated as success; it carries the quarantine location
// so an operator (or a future reconciliation sweep) can finish the job.
type PartialRemediationError struct {
	Bucket           string
	Key              string
	QuarantineBucket string
	QuarantineKey    string
	Err              error
}

func (e *PartialRemediationError) Error() string {
	return fmt.Sprintf("object %s/%s copied to quarantine %s/%s but not removed from source: %v",
		e.Bucket, e.Key, e.QuarantineBucket, e.QuarantineKey, e.Err)
}

func (e *PartialRemediationError) Unwrap() error { return e.Err }
