package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/botworks/club-server/roles"
)

// Cookie names for the session trio. The three are always set and cleared
// together; the invariant is that no state exists where one is present and
// the others are not.
const (
	CredentialCookie = "club_credential"
	UserInfoCookie   = "club_user"
	StartCookie      = "club_session_start"
)

// UserInfo is the denormalized blob stored client-side for fast reads, so
// pages can render name/role without decoding the credential.
type UserInfo struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  roles.Role `json:"role"`
}

// SetCookies writes the session trio. The cookies are intentionally
// readable by client script: the client-side countdown needs the start
// marker and user blob, so HttpOnly cannot be used here.
func SetCookies(w http.ResponseWriter, credential string, user UserInfo, now time.Time, lifetime time.Duration, secure bool) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}

	maxAge := int(lifetime.Seconds())
	setCookie(w, CredentialCookie, credential, maxAge, secure)
	setCookie(w, UserInfoCookie, url.QueryEscape(string(userJSON)), maxAge, secure)
	setCookie(w, StartCookie, strconv.FormatInt(now.UnixMilli(), 10), maxAge, secure)
	return nil
}

// ClearCookies expires the whole trio in one response.
func ClearCookies(w http.ResponseWriter, secure bool) {
	setCookie(w, CredentialCookie, "", -1, secure)
	setCookie(w, UserInfoCookie, "", -1, secure)
	setCookie(w, StartCookie, "", -1, secure)
}

// ReadUserInfo decodes the denormalized user blob from the request cookies.
func ReadUserInfo(r *http.Request) (*UserInfo, bool) {
	cookie, err := r.Cookie(UserInfoCookie)
	if err != nil {
		return nil, false
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil, false
	}
	var user UserInfo
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// ReadStartMillis decodes the session-start marker from the request cookies.
func ReadStartMillis(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(StartCookie)
	if err != nil {
		return 0, false
	}
	millis, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil || millis <= 0 {
		return 0, false
	}
	return millis, true
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}
