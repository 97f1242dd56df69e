package audit

// Stage names recorded in audit entries.
const (
	StageTriage    = "triage"
	StageApproval  = "approval"
	StageExecution = "execution"
)

// Object locates the resource an entry refers to.
type Object struct {
	FindingID string `json:"finding_id"`
	Bucket    string `json:"bucket,omitempty"`
	Key       string `json:"key,omitempty"`
}

// Entry is one line in the hash-chained JSONL audit trail: a triage
// decision, an approval acknowledgement, or a remediation outcome.
// All fields are structs (no map[string]any) so json.Marshal field
// order is deterministic and hashes reproduce.
type Entry struct {
	Timestamp    string `json:"ts"`
	InvocationID string `json:"invocation_id"`
	Stage        string `json:"stage"`
	Object       Object `json:"object"`
	Decision     string `json:"decision,omitempty"`
	Outcome      string `json:"outcome,omitempty"`
	Actor        string `json:"actor,omitempty"`
	Reason       string `json:"reason,omitempty"`
	PrevHash     string `json:"prev_hash"`
}
