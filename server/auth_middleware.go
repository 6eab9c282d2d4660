package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/session"
	"github.com/botworks/club-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyCredential stores the verified credential for the request
	ContextKeyCredential ContextKey = "credential"
)

// CurrentCredential returns the verified credential placed in the request
// context by RequireAuth.
func CurrentCredential(ctx context.Context) (*token.Credential, bool) {
	cred, ok := ctx.Value(ContextKeyCredential).(*token.Credential)
	return cred, ok
}

// SessionHygieneMiddleware is the edge-layer expiry check. It decodes the
// credential cookie's embedded expiry without verifying the signature and
// rejects anything within the buffer window of "now", clearing the whole
// cookie trio. It is cookie hygiene, not authorization - RequireAuth
// remains the security boundary. Requests without a credential cookie pass
// through untouched so bearer-authenticated callers are unaffected.
func (s *Server) SessionHygieneMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CredentialCookie)
		if err != nil {
			next(w, r)
			return
		}

		// A malformed cookie value is treated as expired, never trusted.
		if session.EdgeExpired(time.Now(), cookie.Value, s.config.GetExpiryBuffer()) {
			s.metrics.RecordSessionExpiry("edge")
			session.ClearCookies(w, s.secureCookies())
			s.rejectExpired(w, r)
			return
		}

		next(w, r)
	}
}

// rejectExpired sends an expired session to the login entry point: a
// redirect for browsers, a 401 for API clients.
func (s *Server) rejectExpired(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}
	writeError(w, http.StatusUnauthorized, "session_expired", "session has expired, sign in again")
}

// RequireAuth validates the session credential - signature, expiry,
// revocation horizon, and presence of a privilege claim - and places it in
// the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cred, err := s.authenticate(r)
			if err != nil {
				writeFailure(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyCredential, cred)
			next(w, r.WithContext(ctx))
		}
	}
}

// authenticate extracts and fully verifies the session credential from the
// Authorization header or the credential cookie.
func (s *Server) authenticate(r *http.Request) (*token.Credential, error) {
	raw := bearerToken(r)
	if raw == "" {
		if cookie, err := r.Cookie(session.CredentialCookie); err == nil {
			raw = cookie.Value
		}
	}
	if raw == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	cred, err := s.tokens.Verify(r.Context(), raw)
	if err != nil || !cred.Active {
		return nil, apperrors.ErrInvalidCredential
	}
	// A credential without a privilege claim is not a usable session: the
	// claim is attached at login and is never absent afterwards.
	if cred.Role == nil {
		return nil, apperrors.ErrInvalidCredential
	}
	return cred, nil
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
