package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/roles"
	"github.com/botworks/club-server/session"
	"github.com/botworks/club-server/token"
)

const (
	// providerTokenCookie carries the identity provider's ID token between
	// the OAuth callback and the session endpoints.
	providerTokenCookie = "club_id_token"
	oauthStateCookie    = "club_oauth_state"
)

type roleResponse struct {
	Success bool       `json:"success"`
	Role    roles.Role `json:"role"`
}

type sessionStatusResponse struct {
	Success     bool             `json:"success"`
	RemainingMS int64            `json:"remainingMs"`
	User        session.UserInfo `json:"user"`
}

// loginRedirector is the slice of the OIDC verifier the browser login flow
// needs. Kept as a local interface so tests can stub it and so the server
// degrades cleanly when only bearer-token login is configured.
type loginRedirector interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// SessionLoginHandler verifies a provider-issued token, resolves the
// privilege level, mints the session credential, and sets the cookie trio.
func (s *Server) SessionLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.login(w, r, s.providerToken(r))
	}
}

// RoleHandler re-resolves the privilege level for a provider-issued token
// without opening a session. Running it on an already-resolved identity
// self-heals any drift between the allow-list and a stale claim.
func (s *Server) RoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcome, err := s.resolve(r.Context(), s.providerToken(r))
		if err != nil {
			s.metrics.RecordRoleResolution("rejected")
			writeFailure(w, err)
			return
		}
		s.metrics.RecordRoleResolution(string(outcome.Role))
		writeJSON(w, http.StatusOK, roleResponse{Success: true, Role: outcome.Role})
	}
}

// SessionStatusHandler reports the remaining session lifetime from the
// marker cookie. This is the proactive vantage: the client polls it (or
// counts down itself) and signs out before any request can fail.
func (s *Server) SessionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startMillis, ok := session.ReadStartMillis(r)
		if !ok {
			writeFailure(w, apperrors.ErrUnauthenticated)
			return
		}

		now := time.Now()
		lifetime := s.config.GetSessionLifetime()
		if session.MarkerExpired(now, startMillis, lifetime) {
			s.metrics.RecordSessionExpiry("marker")
			session.ClearCookies(w, s.secureCookies())
			writeFailure(w, apperrors.ErrSessionExpired)
			return
		}

		user, _ := session.ReadUserInfo(r)
		resp := sessionStatusResponse{
			Success:     true,
			RemainingMS: session.Remaining(now, startMillis, lifetime).Milliseconds(),
		}
		if user != nil {
			resp.User = *user
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// LogoutHandler clears the cookie trio. Credentials are left to expire
// naturally; logout is a client-state operation.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session.ClearCookies(w, s.secureCookies())
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// LoginRedirectHandler sends the browser to the identity provider.
func (s *Server) LoginRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirector, ok := s.verifier.(loginRedirector)
		if !ok || s.verifier == nil {
			writeError(w, http.StatusInternalServerError, "backend_unavailable", "identity provider is not configured")
			return
		}

		state := uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   int((5 * time.Minute).Seconds()),
			HttpOnly: true,
			Secure:   s.secureCookies(),
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, redirector.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the provider round-trip: state check, code
// exchange, then the same login flow as the session endpoint.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirector, ok := s.verifier.(loginRedirector)
		if !ok || s.verifier == nil {
			writeError(w, http.StatusInternalServerError, "backend_unavailable", "identity provider is not configured")
			return
		}

		stateCookie, err := r.Cookie(oauthStateCookie)
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			writeError(w, http.StatusBadRequest, "invalid_state", "login state mismatch")
			return
		}

		rawIDToken, err := redirector.Exchange(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			s.logger.Error().Err(err).Msg("provider code exchange failed")
			writeError(w, http.StatusUnauthorized, "invalid_credential", "provider code exchange failed")
			return
		}

		s.login(w, r, rawIDToken)
	}
}

// providerToken extracts the identity provider token from the Authorization
// header or, failing that, the provider token cookie.
func (s *Server) providerToken(r *http.Request) string {
	if raw := bearerToken(r); raw != "" {
		return raw
	}
	if cookie, err := r.Cookie(providerTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// resolve verifies the provider token and runs the role resolver.
func (s *Server) resolve(ctx context.Context, rawToken string) (*roles.Outcome, error) {
	if rawToken == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if s.verifier == nil {
		return nil, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "identity provider is not configured")
	}

	ident, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	outcome, err := s.resolver.Resolve(ctx, ident)
	if err != nil {
		return nil, err
	}
	if outcome.Revoked {
		s.metrics.RecordRevocation()
	}
	return outcome, nil
}

// login runs the full flow: verify, resolve, mint, set the cookie trio.
func (s *Server) login(w http.ResponseWriter, r *http.Request, rawToken string) {
	if rawToken == "" {
		s.metrics.RecordRoleResolution("rejected")
		writeFailure(w, apperrors.ErrUnauthenticated)
		return
	}
	if s.verifier == nil {
		s.metrics.RecordRoleResolution("rejected")
		writeFailure(w, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "identity provider is not configured"))
		return
	}

	ident, err := s.verifier.Verify(r.Context(), rawToken)
	if err != nil {
		s.metrics.RecordRoleResolution("rejected")
		writeFailure(w, err)
		return
	}

	outcome, err := s.resolver.Resolve(r.Context(), ident)
	if err != nil {
		s.metrics.RecordRoleResolution("rejected")
		writeFailure(w, err)
		return
	}
	if outcome.Revoked {
		s.metrics.RecordRevocation()
	}
	s.metrics.RecordRoleResolution(string(outcome.Role))

	credential, err := s.tokens.Mint(token.UserInfo{
		Subject: ident.Subject,
		Email:   ident.Email,
		Name:    ident.Name,
	}, outcome.Role)
	if err != nil {
		s.logger.Error().Err(err).Str("subject", ident.Subject).Msg("minting credential failed")
		writeFailure(w, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "minting credential: %v", err))
		return
	}

	if err := session.SetCookies(w, credential, session.UserInfo{
		ID:    ident.Subject,
		Name:  ident.Name,
		Email: ident.Email,
		Role:  outcome.Role,
	}, time.Now(), s.config.GetSessionLifetime(), s.secureCookies()); err != nil {
		writeFailure(w, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "writing session cookies: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, roleResponse{Success: true, Role: outcome.Role})
}
