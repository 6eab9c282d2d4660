package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/notifications"
)

var _ notifications.Repo = (*SQLiteStore)(nil)

// Append inserts a notification record with an empty read set.
func (s *SQLiteStore) Append(ctx context.Context, record *notifications.Record) error {
	fields, err := json.Marshal(record.ChangedFields)
	if err != nil {
		return fmt.Errorf("encoding changed fields: %w", err)
	}

	query := `
		INSERT INTO notifications (id, type, message, actor_id, actor_name, actor_email, changed_fields, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.Type,
		record.Message,
		record.ActorID,
		record.ActorName,
		record.ActorEmail,
		string(fields),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("appending notification: %w", err)
	}

	s.logger.Debug().Str("id", record.ID).Str("type", record.Type).Msg("notification appended")
	return nil
}

// List returns records newest-first up to limit, with their read sets.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*notifications.Record, error) {
	query := `
		SELECT n.id, n.type, n.message, n.actor_id, n.actor_name, n.actor_email, n.changed_fields, n.created_at,
		       COALESCE(GROUP_CONCAT(r.reader_id), '')
		FROM notifications n
		LEFT JOIN notification_reads r ON r.notification_id = n.id
		GROUP BY n.id
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	records := make([]*notifications.Record, 0)
	for rows.Next() {
		var record notifications.Record
		var fields, createdAt, readers string
		if err := rows.Scan(
			&record.ID,
			&record.Type,
			&record.Message,
			&record.ActorID,
			&record.ActorName,
			&record.ActorEmail,
			&fields,
			&createdAt,
			&readers,
		); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}

		if err := json.Unmarshal([]byte(fields), &record.ChangedFields); err != nil {
			return nil, fmt.Errorf("decoding changed fields: %w", err)
		}
		record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing notification timestamp: %w", err)
		}
		if readers != "" {
			record.ReadBy = strings.Split(readers, ",")
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// MarkRead adds readerID to one record's read set. INSERT OR IGNORE makes
// the operation idempotent and safe under concurrent markers - no
// read-modify-write of the set is involved.
func (s *SQLiteStore) MarkRead(ctx context.Context, id, readerID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking notification: %w", err)
	}
	if exists == 0 {
		return apperrors.ErrNotFound
	}

	query := `INSERT OR IGNORE INTO notification_reads (notification_id, reader_id, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, id, readerID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

// MarkAllRead adds readerID to every record lacking it, in one statement,
// which observes a snapshot of the log at call time. Returns the number of
// records actually changed; already-read records are not rewritten.
func (s *SQLiteStore) MarkAllRead(ctx context.Context, readerID string) (int, error) {
	query := `
		INSERT OR IGNORE INTO notification_reads (notification_id, reader_id, created_at)
		SELECT id, ?, ? FROM notifications
	`

	result, err := s.db.ExecContext(ctx, query, readerID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}

	changed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting marked notifications: %w", err)
	}
	return int(changed), nil
}

// Delete removes a record and (via cascade) its read marks.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
