package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/botworks/club-server/internal/errors"
)

// Service wraps the log with the per-reader derived view: isRead
// annotations, page-bounded unread counts, and the unread-only filter.
type Service struct {
	repo    Repo
	logger  zerolog.Logger
	nowFunc func() time.Time
}

type ServiceOption func(*Service)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(repo Repo, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[notifications.NewService] repo is required")
	}

	s := &Service{
		repo:    repo,
		logger:  zerolog.Nop(),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Append creates a record. The caller supplies type, message, actor, and
// changed-field names; ID, timestamp, and the empty read set are filled
// here. Duplicates are permitted and are the caller's responsibility.
func (s *Service) Append(ctx context.Context, record *Record) error {
	if record.Type == "" || record.Message == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "notification needs a type and message")
	}
	record.ID = uuid.New().String()
	record.CreatedAt = s.nowFunc()
	record.ReadBy = nil
	if record.ChangedFields == nil {
		record.ChangedFields = []string{}
	}

	if err := s.repo.Append(ctx, record); err != nil {
		return apperrors.Wrapf(apperrors.ErrBackendUnavailable, "appending notification: %v", err)
	}
	return nil
}

// Notify appends as a secondary side effect of some primary operation.
// Its failure is logged and swallowed so it can never fail the caller.
func (s *Service) Notify(ctx context.Context, record *Record) {
	if err := s.Append(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("type", record.Type).Msg("dropping side-effect notification")
	}
}

// List returns up to limit records newest-first, each annotated with the
// requesting reader's isRead flag, plus the unread count computed over the
// same bounded page (not the full log). With unreadOnly the read records
// are filtered out post-fetch.
func (s *Service) List(ctx context.Context, readerID string, limit int, unreadOnly bool) ([]Annotated, int, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, 0, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "listing notifications: %v", err)
	}

	annotated := make([]Annotated, 0, len(records))
	unread := 0
	for _, record := range records {
		isRead := record.IsReadBy(readerID)
		if !isRead {
			unread++
		}
		if unreadOnly && isRead {
			continue
		}
		annotated = append(annotated, Annotated{Record: *record, IsRead: isRead})
	}
	return annotated, unread, nil
}

// MarkRead idempotently marks one record read for readerID.
func (s *Service) MarkRead(ctx context.Context, id, readerID string) error {
	err := s.repo.MarkRead(ctx, id, readerID)
	if err == nil || apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return apperrors.Wrapf(apperrors.ErrBackendUnavailable, "marking notification %s read: %v", id, err)
}

// MarkAllRead marks every record in the log read for readerID and returns
// how many actually changed. A second consecutive call returns zero.
func (s *Service) MarkAllRead(ctx context.Context, readerID string) (int, error) {
	count, err := s.repo.MarkAllRead(ctx, readerID)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrBackendUnavailable, "marking all notifications read: %v", err)
	}
	return count, nil
}

// Delete removes a record by identifier. Administrative; no ownership check
// beyond authentication.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err == nil || apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return apperrors.Wrapf(apperrors.ErrBackendUnavailable, "deleting notification %s: %v", id, err)
}
