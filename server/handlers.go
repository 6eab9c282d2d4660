package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/botworks/club-server/internal/errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

// writeFailure maps the core error taxonomy onto status codes:
// unauthenticated and invalid credential are rejections (401), a verified
// identity without an email is a client error (400), a missing record is
// 404, and anything else is a backend failure (500) so operators can tell
// misconfiguration apart from legitimate denial.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", "no credential presented")
	case apperrors.Is(err, apperrors.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "invalid_credential", "credential is invalid or expired")
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "session_expired", "session has expired, sign in again")
	case apperrors.Is(err, apperrors.ErrMalformedIdentity):
		writeError(w, http.StatusBadRequest, "malformed_identity", "verified identity has no email")
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case apperrors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no such record")
	default:
		writeError(w, http.StatusInternalServerError, "backend_unavailable", "a backing service failed")
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
