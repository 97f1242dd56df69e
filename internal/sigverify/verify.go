// Package sigverify authenticates inbound approval callbacks. The
// chat relay signs each request with HMAC-SHA256 over
// "{version}:{timestamp}:{body}" using a shared secret; verification
// runs before any other processing of the callback.
package sigverify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sentinelops/macieguard/internal/model"
)

// staleAfter is the replay window. Requests whose timestamp is further
// in the past are rejected regardless of signature validity. The check
// is one-directional: future timestamps pass.
const staleAfter = 5 * time.Minute

// Sentinel results. Both unwrap to model.ErrAuthentication so the
// gateway can treat them uniformly as an auth failure.
var (
	ErrStale            = fmt.Errorf("%w: request timestamp outside replay window", model.ErrAuthentication)
	ErrSignatureInvalid = fmt.Errorf("%w: request signature mismatch", model.ErrAuthentication)
)

// Verifier validates callback authenticity and freshness.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// New creates a verifier for the shared signing secret.
func New(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify checks the signature header ("v0=<hex>") and timestamp header
// (unix seconds) against the raw request body. Returns nil, ErrStale,
// or ErrSignatureInvalid.
func (v *Verifier) Verify(signature, timestamp string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrSignatureInvalid
	}

	oldest := v.now().Add(-staleAfter).Unix()
	if ts < oldest {
		return ErrStale
	}

	version, supplied, ok := strings.Cut(signature, "=")
	if !ok {
		return ErrSignatureInvalid
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%s:%s:%s", version, timestamp, body)
	computed := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal compares in constant time regardless of where the
	// strings diverge.
	if !hmac.Equal([]byte(supplied), []byte(computed)) {
		return ErrSignatureInvalid
	}
	return nil
}

// Sign computes the signature header value for a body at a timestamp.
// Used by tests and local tooling to produce valid callbacks.
func (v *Verifier) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}
