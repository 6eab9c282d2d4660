package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/notifications"
	"github.com/botworks/club-server/roles"
	"github.com/botworks/club-server/store"
)

func setupStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "club.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func appendRecord(t *testing.T, s *store.SQLiteStore, createdAt time.Time, message string) *notifications.Record {
	t.Helper()

	record := &notifications.Record{
		ID:            uuid.New().String(),
		Type:          "memberUpdated",
		Message:       message,
		ActorID:       "actor-1",
		ActorName:     "Jordan",
		ActorEmail:    "jordan@club.example.org",
		ChangedFields: []string{"name", "team"},
		CreatedAt:     createdAt,
	}
	require.NoError(t, s.Append(context.Background(), record))
	return record
}

func TestClaimRoundTrip(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetClaim(context.Background(), "subject-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	written := &roles.Claim{
		Subject:   "subject-1",
		Email:     "jordan@club.example.org",
		Role:      roles.RoleAdmin,
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.UpsertClaim(context.Background(), written))

	claim, err := s.GetClaim(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Equal(t, written.Subject, claim.Subject)
	require.Equal(t, written.Email, claim.Email)
	require.Equal(t, written.Role, claim.Role)
	require.True(t, claim.UpdatedAt.Equal(written.UpdatedAt))
}

func TestUpsertClaimOverwritesPriorRole(t *testing.T) {
	s := setupStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertClaim(context.Background(), &roles.Claim{
		Subject: "subject-1", Email: "jordan@club.example.org", Role: roles.RoleAdmin, UpdatedAt: base,
	}))
	require.NoError(t, s.UpsertClaim(context.Background(), &roles.Claim{
		Subject: "subject-1", Email: "jordan@club.example.org", Role: roles.RoleSuperAdmin, UpdatedAt: base.Add(time.Minute),
	}))

	claim, err := s.GetClaim(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Equal(t, roles.RoleSuperAdmin, claim.Role)
	require.True(t, claim.UpdatedAt.Equal(base.Add(time.Minute)))
}

func TestNotificationListNewestFirstWithReadSets(t *testing.T) {
	s := setupStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := appendRecord(t, s, base, "oldest")
	middle := appendRecord(t, s, base.Add(time.Second), "middle")
	newest := appendRecord(t, s, base.Add(2*time.Second), "newest")

	require.NoError(t, s.MarkRead(context.Background(), middle.ID, "reader-a"))
	require.NoError(t, s.MarkRead(context.Background(), middle.ID, "reader-b"))

	records, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, newest.ID, records[0].ID)
	require.Equal(t, middle.ID, records[1].ID)
	require.Equal(t, oldest.ID, records[2].ID)

	require.Empty(t, records[0].ReadBy)
	require.ElementsMatch(t, []string{"reader-a", "reader-b"}, records[1].ReadBy)
	require.Equal(t, []string{"name", "team"}, records[1].ChangedFields)
}

func TestNotificationListHonorsLimit(t *testing.T) {
	s := setupStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendRecord(t, s, base.Add(time.Duration(i)*time.Second), "bulk")
	}

	records, err := s.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestMarkReadIsIdempotentAtTheStoreLevel(t *testing.T) {
	s := setupStore(t)

	record := appendRecord(t, s, time.Now().UTC(), "once")
	require.NoError(t, s.MarkRead(context.Background(), record.ID, "reader-a"))
	require.NoError(t, s.MarkRead(context.Background(), record.ID, "reader-a"))

	records, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, []string{"reader-a"}, records[0].ReadBy)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	s := setupStore(t)

	err := s.MarkRead(context.Background(), "no-such-id", "reader-a")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkAllReadCountsOnlyNewMarks(t *testing.T) {
	s := setupStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendRecord(t, s, base, "one")
	appendRecord(t, s, base.Add(time.Second), "two")
	already := appendRecord(t, s, base.Add(2*time.Second), "three")
	require.NoError(t, s.MarkRead(context.Background(), already.ID, "reader-a"))

	changed, err := s.MarkAllRead(context.Background(), "reader-a")
	require.NoError(t, err)
	require.Equal(t, 2, changed)

	changed, err = s.MarkAllRead(context.Background(), "reader-a")
	require.NoError(t, err)
	require.Equal(t, 0, changed)
}

func TestDeleteCascadesReadMarks(t *testing.T) {
	s := setupStore(t)

	record := appendRecord(t, s, time.Now().UTC(), "doomed")
	require.NoError(t, s.MarkRead(context.Background(), record.ID, "reader-a"))
	require.NoError(t, s.Delete(context.Background(), record.ID))

	records, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, records)

	// Re-marking after deletion reports the record missing, confirming the
	// cascade removed the read rows rather than orphaning them.
	require.ErrorIs(t, s.MarkRead(context.Background(), record.ID, "reader-a"), apperrors.ErrNotFound)
	require.ErrorIs(t, s.Delete(context.Background(), record.ID), apperrors.ErrNotFound)
}
