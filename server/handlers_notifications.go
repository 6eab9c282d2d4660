package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/notifications"
)

const serviceKeyHeader = "X-Service-Key"

type notificationListResponse struct {
	Success       bool                      `json:"success"`
	Notifications []notifications.Annotated `json:"notifications"`
	UnreadCount   int                       `json:"unreadCount"`
}

type appendNotificationRequest struct {
	Type          string   `json:"type"`
	Message       string   `json:"message"`
	ChangedFields []string `json:"changedFields,omitempty"`
}

// NotificationListHandler returns the newest notifications annotated with
// the caller's read state. Query parameters: limit (page size), unreadOnly
// (drop already-read records). The unread count covers the fetched page.
func (s *Server) NotificationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := CurrentCredential(r.Context())
		if !ok {
			writeFailure(w, apperrors.ErrUnauthenticated)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_input", "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		unreadOnly := false
		if raw := r.URL.Query().Get("unreadOnly"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_input", "unreadOnly must be a boolean")
				return
			}
			unreadOnly = parsed
		}

		annotated, unread, err := s.notifs.List(r.Context(), cred.Subject, limit, unreadOnly)
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeJSON(w, http.StatusOK, notificationListResponse{
			Success:       true,
			Notifications: annotated,
			UnreadCount:   unread,
		})
	}
}

// NotificationAppendHandler appends a record to the log. Callers are either
// trusted services presenting the shared service key or authenticated users;
// the actor fields always come from the caller's verified identity, never
// the request body.
func (s *Server) NotificationAppendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record := notifications.Record{}

		if key := r.Header.Get(serviceKeyHeader); key != "" {
			hash := s.config.GetServiceKeyHash()
			if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
				writeFailure(w, apperrors.ErrInvalidCredential)
				return
			}
			record.ActorID = "service"
			record.ActorName = "service"
		} else {
			cred, err := s.authenticate(r)
			if err != nil {
				writeFailure(w, err)
				return
			}
			record.ActorID = cred.Subject
			record.ActorName = cred.Name
			record.ActorEmail = cred.Email
		}

		var req appendNotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "request body is not valid JSON")
			return
		}
		record.Type = req.Type
		record.Message = req.Message
		record.ChangedFields = req.ChangedFields

		if err := s.notifs.Append(r.Context(), &record); err != nil {
			writeFailure(w, err)
			return
		}

		s.metrics.RecordNotificationAppended()
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": record.ID})
	}
}

// NotificationMarkReadHandler marks one record read for the caller. Marking
// an already-read record succeeds; an unknown identifier is a 404.
func (s *Server) NotificationMarkReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := CurrentCredential(r.Context())
		if !ok {
			writeFailure(w, apperrors.ErrUnauthenticated)
			return
		}

		if err := s.notifs.MarkRead(r.Context(), r.PathValue("id"), cred.Subject); err != nil {
			writeFailure(w, err)
			return
		}

		s.metrics.RecordNotificationsMarkedRead(1)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// NotificationMarkAllReadHandler marks every record read for the caller and
// reports how many actually changed.
func (s *Server) NotificationMarkAllReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := CurrentCredential(r.Context())
		if !ok {
			writeFailure(w, apperrors.ErrUnauthenticated)
			return
		}

		updated, err := s.notifs.MarkAllRead(r.Context(), cred.Subject)
		if err != nil {
			writeFailure(w, err)
			return
		}

		s.metrics.RecordMarkAllRun()
		s.metrics.RecordNotificationsMarkedRead(updated)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": updated})
	}
}

// NotificationDeleteHandler removes a record from the log.
func (s *Server) NotificationDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentCredential(r.Context()); !ok {
			writeFailure(w, apperrors.ErrUnauthenticated)
			return
		}

		if err := s.notifs.Delete(r.Context(), r.PathValue("id")); err != nil {
			writeFailure(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
