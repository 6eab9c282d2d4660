package session_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botworks/club-server/session"
)

// tokenWithExp builds an unsigned three-part token whose payload carries the
// given expiry, matching the wire shape of a real credential.
func tokenWithExp(t *testing.T, exp time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]int64{"exp": exp.Unix()})
	require.NoError(t, err)
	body := base64.RawURLEncoding.EncodeToString(payload)
	return fmt.Sprintf("%s.%s.signature", header, body)
}

func TestMarkerExpiredBoundaryIsInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	startMillis := start.UnixMilli()

	require.False(t, session.MarkerExpired(start, startMillis, time.Hour))
	require.False(t, session.MarkerExpired(start.Add(time.Hour-time.Millisecond), startMillis, time.Hour))
	require.True(t, session.MarkerExpired(start.Add(time.Hour), startMillis, time.Hour))
	require.True(t, session.MarkerExpired(start.Add(time.Hour+time.Millisecond), startMillis, time.Hour))
}

func TestRemainingNeverNegative(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	startMillis := start.UnixMilli()

	require.Equal(t, time.Hour, session.Remaining(start, startMillis, time.Hour))
	require.Equal(t, 30*time.Minute, session.Remaining(start.Add(30*time.Minute), startMillis, time.Hour))
	require.Equal(t, time.Duration(0), session.Remaining(start.Add(2*time.Hour), startMillis, time.Hour))
}

func TestNearExpiryBufferBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, session.NearExpiry(now, now.Add(-time.Minute), session.ExpiryBuffer))
	require.True(t, session.NearExpiry(now, now, session.ExpiryBuffer))
	require.True(t, session.NearExpiry(now, now.Add(60*time.Second), session.ExpiryBuffer))
	require.False(t, session.NearExpiry(now, now.Add(61*time.Second), session.ExpiryBuffer))
}

func TestDecodeExpiry(t *testing.T) {
	exp := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	decoded, ok := session.DecodeExpiry(tokenWithExp(t, exp))
	require.True(t, ok)
	require.True(t, decoded.Equal(exp))
}

func TestDecodeExpiryRejectsMalformedTokens(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"no dots":         "abcdef",
		"two parts":       "aaa.bbb",
		"four parts":      "aaa.bbb.ccc.ddd",
		"bad base64":      "aaa.!!!.ccc",
		"not json":        "aaa." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".ccc",
		"no exp claim":    "aaa." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x"}`)) + ".ccc",
		"zero exp":        "aaa." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":0}`)) + ".ccc",
		"negative exp":    "aaa." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":-5}`)) + ".ccc",
		"truncated token": tokenWithExp(t, time.Now())[:20],
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := session.DecodeExpiry(raw)
			require.False(t, ok)
		})
	}
}

func TestEdgeExpiredFailsClosed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, session.EdgeExpired(now, "garbage", session.ExpiryBuffer))
	require.True(t, session.EdgeExpired(now, "", session.ExpiryBuffer))
}

func TestEdgeExpiredAgainstLiveAndLapsedCredentials(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.False(t, session.EdgeExpired(now, tokenWithExp(t, now.Add(30*time.Minute)), session.ExpiryBuffer))
	require.True(t, session.EdgeExpired(now, tokenWithExp(t, now.Add(59*time.Second)), session.ExpiryBuffer))
	require.True(t, session.EdgeExpired(now, tokenWithExp(t, now.Add(-time.Hour)), session.ExpiryBuffer))
}

// A session started exactly one hour and one millisecond ago is expired from
// the marker vantage even though the wall clock barely moved past the line.
func TestMarkerExpiredJustPastLifetime(t *testing.T) {
	now := time.Date(2026, 3, 1, 13, 0, 0, int(time.Millisecond), time.UTC)
	startMillis := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

	require.True(t, session.MarkerExpired(now, startMillis, session.DefaultLifetime))
	require.Equal(t, time.Duration(0), session.Remaining(now, startMillis, session.DefaultLifetime))
}
