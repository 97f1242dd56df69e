// Package gateway receives approval callbacks from the chat channel's
// button-click relay. A callback moves through a fixed sequence:
// signature check, finding re-fetch, eligibility re-check, async
// dispatch, acknowledge. The callback itself is untrusted input; the
// only data taken from it are the finding reference token and the
// acting user.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/sentinelops/macieguard/internal/audit"
	"github.com/sentinelops/macieguard/internal/findings"
	"github.com/sentinelops/macieguard/internal/invoke"
	"github.com/sentinelops/macieguard/internal/model"
	"github.com/sentinelops/macieguard/internal/sigverify"
)

// Header names used by the chat relay.
const (
	HeaderSignature = "X-Slack-Signature"
	HeaderTimestamp = "X-Slack-Request-Timestamp"
)

// Response is a transport-agnostic HTTP-ish result, usable from both
// the net/http handler and the API-gateway Lambda shim.
type Response struct {
	StatusCode int
	Body       string
}

// Gateway validates and dispatches approval callbacks.
type Gateway struct {
	verifier *sigverify.Verifier
	source   findings.Source
	invoker  invoke.Invoker
	trail    *audit.Log
	log      zerolog.Logger
}

// New creates a gateway. trail may be nil.
func New(verifier *sigverify.Verifier, source findings.Source, invoker invoke.Invoker, trail *audit.Log, log zerolog.Logger) *Gateway {
	return &Gateway{verifier: verifier, source: source, invoker: invoker, trail: trail, log: log}
}

// callback is the subset of the relay's interaction payload this
// system reads.
type callback struct {
	Actions []struct {
		Value string `json:"value"`
	} `json:"actions"`
	User struct {
		Username string `json:"username"`
	} `json:"user"`
	ResponseURL string `json:"response_url"`
}

// Handle processes one raw callback. The signature is verified over
// the exact body bytes as received, before anything is parsed; on any
// auth failure no state is touched and no remediation happens.
func (g *Gateway) Handle(ctx context.Context, signature, timestamp string, body []byte) Response {
	if err := g.verifier.Verify(signature, timestamp, body); err != nil {
		g.log.Warn().Err(err).Msg("callback rejected")
		return respond(http.StatusUnauthorized, "Error: invalid request signature")
	}

	cb, err := parseCallback(body)
	if err != nil {
		g.log.Warn().Err(err).Msg("malformed callback payload")
		return respond(http.StatusBadRequest, "Error: malformed request payload")
	}

	// Re-fetch the referenced finding from the detection source. The
	// notification payload is long gone and the callback is untrusted,
	// so the token is the only thing carried forward.
	f, err := g.source.Get(ctx, cb.token())
	if err != nil {
		g.log.Error().Err(err).Str("finding_id", cb.token()).Msg("finding re-fetch failed")
		return respond(http.StatusInternalServerError, "Error: unable to process request")
	}
	if f == nil {
		g.log.Warn().Str("finding_id", cb.token()).Msg("no finding for token")
		return respond(http.StatusBadRequest, "Error: Finding not found")
	}

	if f.Category != model.CategoryClassification {
		g.log.Warn().
			Str("finding_id", f.ID).
			Str("category", f.Category).
			Msg("remediation requested on unsupported finding category")
		return respond(http.StatusBadRequest, "Error: Remediation not supported for this finding type")
	}

	approval := &model.ApprovalContext{
		Username:    cb.User.Username,
		ResponseURL: cb.ResponseURL,
	}
	p := model.NewExecutionPayload(f, approval)
	if err := g.invoker.Invoke(ctx, p); err != nil {
		g.log.Error().Err(err).Str("finding_id", f.ID).Msg("execution dispatch failed")
		return respond(http.StatusInternalServerError, "Error: unable to process request")
	}

	g.record(audit.Entry{
		InvocationID: p.InvocationID,
		Stage:        audit.StageApproval,
		Object: audit.Object{
			FindingID: f.ID,
			Bucket:    f.ResourcesAffected.S3Bucket.Name,
			Key:       f.ResourcesAffected.S3Object.Key,
		},
		Actor: cb.User.Username,
	})

	g.log.Info().
		Str("finding_id", f.ID).
		Str("user", cb.User.Username).
		Msg("remediation authorised, execution dispatched")

	// Acknowledge immediately; the outcome is reported out-of-band by
	// the execution stage.
	return respond(http.StatusOK, "request acknowledged")
}

// ServeHTTP adapts Handle to net/http for local serving.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	resp := g.Handle(r.Context(),
		r.Header.Get(HeaderSignature),
		r.Header.Get(HeaderTimestamp),
		body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func (cb *callback) token() string {
	return cb.Actions[0].Value
}

// parseCallback unwraps the URL-encoded body whose "payload" key holds
// the JSON interaction document.
func parseCallback(body []byte) (*callback, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse form: %v", model.ErrValidation, err)
	}
	raw := values.Get("payload")
	if raw == "" {
		return nil, fmt.Errorf("%w: missing payload field", model.ErrValidation)
	}

	var cb callback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		return nil, fmt.Errorf("%w: parse payload: %v", model.ErrValidation, err)
	}
	if len(cb.Actions) == 0 || cb.Actions[0].Value == "" {
		return nil, fmt.Errorf("%w: no action value", model.ErrValidation)
	}
	if cb.User.Username == "" {
		return nil, fmt.Errorf("%w: no acting user", model.ErrValidation)
	}
	return &cb, nil
}

func (g *Gateway) record(entry audit.Entry) {
	if g.trail == nil {
		return
	}
	if err := g.trail.Record(entry); err != nil {
		g.log.Error().Err(err).Msg("audit record failed")
	}
}

func respond(status int, text string) Response {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		// A map[string]string cannot fail to marshal; keep the
		// compiler honest anyway.
		return Response{StatusCode: http.StatusInternalServerError, Body: `{"text":"internal error"}`}
	}
	return Response{StatusCode: status, Body: string(body)}
}
