package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botworks/club-server/roles"
	"github.com/botworks/club-server/session"
)

func TestSetCookiesWritesTheTrioTogether(t *testing.T) {
	rec := httptest.NewRecorder()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := session.SetCookies(rec, "raw.credential.value", session.UserInfo{
		ID:    "subject-1",
		Name:  "Jordan",
		Email: "jordan@club.example.org",
		Role:  roles.RoleSuperAdmin,
	}, now, time.Hour, true)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}
	require.Len(t, byName, 3)
	require.Contains(t, byName, session.CredentialCookie)
	require.Contains(t, byName, session.UserInfoCookie)
	require.Contains(t, byName, session.StartCookie)

	for _, c := range cookies {
		require.Equal(t, int(time.Hour.Seconds()), c.MaxAge)
		require.True(t, c.Secure)
		require.False(t, c.HttpOnly, "the client-side countdown reads these cookies")
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}

	require.Equal(t, "raw.credential.value", byName[session.CredentialCookie].Value)
	require.Equal(t, "1772366400000", byName[session.StartCookie].Value)
}

func TestClearCookiesExpiresTheTrio(t *testing.T) {
	rec := httptest.NewRecorder()
	session.ClearCookies(rec, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		require.Less(t, c.MaxAge, 0)
		require.Empty(t, c.Value)
	}
}

func TestReadUserInfoRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	user := session.UserInfo{
		ID:    "subject-1",
		Name:  "Jordan Q. Coach",
		Email: "jordan@club.example.org",
		Role:  roles.RoleAdmin,
	}
	require.NoError(t, session.SetCookies(rec, "cred", user, time.Now(), time.Hour, false))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got, ok := session.ReadUserInfo(req)
	require.True(t, ok)
	require.Equal(t, user, *got)

	millis, ok := session.ReadStartMillis(req)
	require.True(t, ok)
	require.Greater(t, millis, int64(0))
}

func TestReadUserInfoMissingOrMangledCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := session.ReadUserInfo(req)
	require.False(t, ok)

	req.AddCookie(&http.Cookie{Name: session.UserInfoCookie, Value: "%%%not-json"})
	_, ok = session.ReadUserInfo(req)
	require.False(t, ok)

	req.AddCookie(&http.Cookie{Name: session.StartCookie, Value: "yesterday"})
	_, ok = session.ReadStartMillis(req)
	require.False(t, ok)
}
