// Package invoke is the one-way transport to the execution stage.
// Delivery is at-least-once with no ordering guarantee; the sender
// fires and forgets and must not assume success beyond the handoff
// being accepted.
package invoke

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/sentinelops/macieguard/internal/model"
)

// Invoker hands an execution payload to the next stage.
type Invoker interface {
	Invoke(ctx context.Context, p *model.ExecutionPayload) error
}

// LambdaInvoker dispatches via an asynchronous Event invocation of
// the remediator function. The call returns once the platform has
// accepted the event, not when remediation completes.
type LambdaInvoker struct {
	client   *awslambda.Client
	function string
}

// NewLambdaInvoker creates an invoker targeting the named function.
func NewLambdaInvoker(client *awslambda.Client, function string) *LambdaInvoker {
	return &LambdaInvoker{client: client, function: function}
}

// Invoke sends the payload as an async event.
func (i *LambdaInvoker) Invoke(ctx context.Context, p *model.ExecutionPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = i.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName:   aws.String(i.function),
		InvocationType: lambdatypes.InvocationTypeEvent,
		Payload:        data,
	})
	if err != nil {
		return &model.TransientError{Op: "lambda invoke", Err: err}
	}
	return nil
}

// InboxInvoker dispatches by dropping payload files into a watched
// local directory — the local stand-in for the platform transport,
// with the same at-least-once contract. Files appear atomically
// (tmp + rename) so the watcher never reads a partial write.
type InboxInvoker struct {
	dir string
}

// NewInboxInvoker creates an invoker writing to dir.
func NewInboxInvoker(dir string) *InboxInvoker {
	return &InboxInvoker{dir: dir}
}

// Invoke writes the payload to dir/{invocation_id}.json.
func (i *InboxInvoker) Invoke(_ context.Context, p *model.ExecutionPayload) error {
	if err := os.MkdirAll(i.dir, 0750); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	dst := filepath.Join(i.dir, p.InvocationID+".json")
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename to final: %w", err)
	}
	return nil
}
