package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sentinelops/macieguard/internal/model"
)

const requestTimeout = 5 * time.Second

var httpClient = &http.Client{Timeout: requestTimeout}

// Send posts a message to a Slack webhook (or response_url) endpoint.
// One attempt only: the workflow's retry mechanism is at-least-once
// redelivery from the triggering transport, never a loop here.
func Send(url string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return &model.TransientError{Op: "slack post", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode < 500:
		return fmt.Errorf("slack rejected message: HTTP %d", resp.StatusCode)
	default:
		return &model.TransientError{
			Op:  "slack post",
			Err: fmt.Errorf("server error: HTTP %d", resp.StatusCode),
		}
	}
}
