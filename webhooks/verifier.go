package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FreshnessWindow bounds how old a delivery timestamp may be before the
// delivery is treated as a possible replay. Timestamp headers carry
// milliseconds since epoch, so the window compares against 300000ms.
const FreshnessWindow = 5 * time.Minute

// RejectionError is the normal negative outcome of delivery verification:
// a missing or malformed header, a stale timestamp, or a signature mismatch.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	if e == nil || strings.TrimSpace(e.Reason) == "" {
		return "webhooks: delivery rejected"
	}
	return "webhooks: delivery rejected: " + e.Reason
}

// IsRejection reports whether err is a verification rejection rather than a
// configuration or infrastructure failure.
func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}

func reject(reason string) error {
	return &RejectionError{Reason: reason}
}

// SignatureVerifier validates that an inbound delivery was signed by the
// platform with the shared secret and is fresh enough to not be a replay.
type SignatureVerifier struct {
	FreshnessWindow time.Duration
	Now             func() time.Time
}

func NewSignatureVerifier() SignatureVerifier {
	return SignatureVerifier{
		FreshnessWindow: FreshnessWindow,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SigningInput reproduces the platform's signed content: the timestamp
// header value, a literal colon, and the body bytes exactly as received.
// Both pieces are signed as raw wire bytes; re-rendering a parsed
// timestamp or re-serializing a decoded body would accept inputs the
// sender never signed.
func SigningInput(timestamp string, body []byte) []byte {
	input := make([]byte, 0, len(timestamp)+1+len(body))
	input = append(input, timestamp...)
	input = append(input, ':')
	return append(input, body...)
}

// Verify checks the hex HMAC-SHA256 signature and the timestamp freshness of
// a delivery. Every verification failure is a *RejectionError; a non-rejection
// error is only returned for missing secret material.
//
// The freshness boundary is pinned: an elapsed age of exactly the window
// rejects, one millisecond less accepts. Timestamps from the future reject at
// the same skew.
func (v SignatureVerifier) Verify(signature, timestamp string, body []byte, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("webhooks: signature secret is required")
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return reject("signature header is required")
	}
	tsRaw := strings.TrimSpace(timestamp)
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return reject("timestamp header is not a millisecond epoch integer")
	}

	window := v.FreshnessWindow
	if window <= 0 {
		window = FreshnessWindow
	}
	elapsed := v.now().UnixMilli() - ts
	if elapsed < 0 {
		elapsed = -elapsed
	}
	if elapsed >= window.Milliseconds() {
		return reject("timestamp outside freshness window")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(SigningInput(tsRaw, body))
	expected := mac.Sum(nil)

	decoded, err := hex.DecodeString(signature)
	if err != nil {
		return reject("signature is not hex encoded")
	}
	if subtle.ConstantTimeCompare(decoded, expected) != 1 {
		return reject("signature mismatch")
	}
	return nil
}

func (v SignatureVerifier) now() time.Time {
	if v.Now != nil {
		return v.Now().UTC()
	}
	return time.Now().UTC()
}
