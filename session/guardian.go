// Package session enforces the fixed-duration session lifetime from two
// independent vantage points: a proactive check against the client-stored
// session-start marker, and a defensive edge check that decodes (without
// verifying) the credential's embedded expiry. Both are pure functions of an
// explicit "now" so they can be tested without a live clock.
package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

const (
	// DefaultLifetime is the fixed session duration when no override is
	// configured.
	DefaultLifetime = time.Hour

	// ExpiryBuffer is the window before the credential's embedded expiry
	// within which the edge check already classifies the session expired,
	// so a request never reaches a protected resource with a credential
	// about to lapse mid-flight.
	ExpiryBuffer = 60 * time.Second
)

// MarkerExpired reports whether a session that began at startMillis (epoch
// milliseconds) has outlived lifetime at instant now. The boundary is
// inclusive: exactly lifetime elapsed means expired.
func MarkerExpired(now time.Time, startMillis int64, lifetime time.Duration) bool {
	return now.UnixMilli()-startMillis >= lifetime.Milliseconds()
}

// Remaining returns how much session lifetime is left, never negative.
func Remaining(now time.Time, startMillis int64, lifetime time.Duration) time.Duration {
	left := lifetime - time.Duration(now.UnixMilli()-startMillis)*time.Millisecond
	if left < 0 {
		return 0
	}
	return left
}

// NearExpiry reports whether expiry falls within buffer of now (inclusive)
// or has already passed.
func NearExpiry(now, expiry time.Time, buffer time.Duration) bool {
	return !expiry.After(now.Add(buffer))
}

// DecodeExpiry extracts the embedded expiry from a raw JWT credential
// without verifying its signature. This is cookie hygiene, not
// authorization: the edge layer only needs the expiry field, and true
// verification happens wherever the credential is consumed. Returns ok=false
// for anything that cannot be decoded.
func DecodeExpiry(rawToken string) (time.Time, bool) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}, false
	}

	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.Exp <= 0 {
		return time.Time{}, false
	}

	return time.Unix(claims.Exp, 0), true
}

// EdgeExpired classifies a raw credential from the edge layer's vantage:
// expired when its embedded expiry is within buffer of now, and fail-closed
// when the credential is malformed or truncated.
func EdgeExpired(now time.Time, rawToken string, buffer time.Duration) bool {
	expiry, ok := DecodeExpiry(rawToken)
	if !ok {
		return true
	}
	return NearExpiry(now, expiry, buffer)
}
