package notifications

import (
	"context"
	"time"
)

// DefaultListLimit bounds a list page when the caller gives no limit.
const DefaultListLimit = 50

// Record is a single append-only staff-visible event. ReadBy is a set:
// a reader appears at most once and the set only grows.
type Record struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	ActorID       string    `json:"actorId"`
	ActorName     string    `json:"actorName"`
	ActorEmail    string    `json:"actorEmail"`
	ChangedFields []string  `json:"changedFields"`
	ReadBy        []string  `json:"readBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsReadBy reports membership of readerID in the record's read set.
func (r *Record) IsReadBy(readerID string) bool {
	for _, id := range r.ReadBy {
		if id == readerID {
			return true
		}
	}
	return false
}

// Annotated is a Record with the derived per-reader read flag.
type Annotated struct {
	Record
	IsRead bool `json:"isRead"`
}

// Repo stores the shared notification log. Read-marking must be a set-union
// style update: concurrent markers on the same record may not lose each
// other's marks.
type Repo interface {
	Append(ctx context.Context, record *Record) error
	// List returns records newest-first, up to limit.
	List(ctx context.Context, limit int) ([]*Record, error)
	// MarkRead idempotently adds readerID to one record's read set.
	// Returns errors.ErrNotFound for an unknown record.
	MarkRead(ctx context.Context, id, readerID string) error
	// MarkAllRead adds readerID to every record in the log lacking it, in
	// one atomic batch, and returns the number of records actually changed.
	MarkAllRead(ctx context.Context, readerID string) (int, error)
	// Delete removes a record unconditionally. Returns errors.ErrNotFound
	// for an unknown record.
	Delete(ctx context.Context, id string) error
}
