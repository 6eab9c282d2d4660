package fakenotificationrepo

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/notifications"
)

var _ notifications.Repo = (*FakeNotificationRepo)(nil)

type FakeNotificationRepo struct {
	records map[string]*notifications.Record
	err     error
	lock    sync.RWMutex
}

func NewFakeNotificationRepo() *FakeNotificationRepo {
	return &FakeNotificationRepo{
		records: make(map[string]*notifications.Record),
	}
}

// FailWith makes every call return err, simulating an unavailable store.
func (nr *FakeNotificationRepo) FailWith(err error) {
	nr.lock.Lock()
	defer nr.lock.Unlock()
	nr.err = err
}

func (nr *FakeNotificationRepo) Append(_ context.Context, record *notifications.Record) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if nr.err != nil {
		return nr.err
	}
	copied := copyRecord(record)
	nr.records[record.ID] = copied
	return nil
}

func (nr *FakeNotificationRepo) List(_ context.Context, limit int) ([]*notifications.Record, error) {
	nr.lock.RLock()
	defer nr.lock.RUnlock()

	if nr.err != nil {
		return nil, nr.err
	}

	records := make([]*notifications.Record, 0, len(nr.records))
	for _, r := range nr.records {
		records = append(records, copyRecord(r))
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (nr *FakeNotificationRepo) MarkRead(_ context.Context, id, readerID string) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if nr.err != nil {
		return nr.err
	}
	record, ok := nr.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !record.IsReadBy(readerID) {
		record.ReadBy = append(record.ReadBy, readerID)
	}
	return nil
}

func (nr *FakeNotificationRepo) MarkAllRead(_ context.Context, readerID string) (int, error) {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if nr.err != nil {
		return 0, nr.err
	}
	changed := 0
	for _, record := range nr.records {
		if !record.IsReadBy(readerID) {
			record.ReadBy = append(record.ReadBy, readerID)
			changed++
		}
	}
	return changed, nil
}

func (nr *FakeNotificationRepo) Delete(_ context.Context, id string) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if nr.err != nil {
		return nr.err
	}
	if _, ok := nr.records[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(nr.records, id)
	return nil
}

func copyRecord(r *notifications.Record) *notifications.Record {
	copied := *r
	copied.ChangedFields = append([]string(nil), r.ChangedFields...)
	copied.ReadBy = append([]string(nil), r.ReadBy...)
	return &copied
}
