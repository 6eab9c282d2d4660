package token

import (
	"context"
	"sync"
	"time"
)

// RevokedSubjectStore tracks, per subject, the instant before which all
// issued credentials are invalid.
type RevokedSubjectStore interface {
	Revoke(ctx context.Context, subject string, at time.Time) error
	RevokedAt(ctx context.Context, subject string) (time.Time, bool, error)
	Cleanup(ctx context.Context, now time.Time) // Remove horizons no live credential can predate
}

// InMemoryRevokedSubjectStore is the default single-process implementation.
type InMemoryRevokedSubjectStore struct {
	horizons  map[string]time.Time
	retention time.Duration
	mu        sync.RWMutex
}

func NewInMemoryRevokedSubjectStore(retention time.Duration) *InMemoryRevokedSubjectStore {
	return &InMemoryRevokedSubjectStore{
		horizons:  make(map[string]time.Time),
		retention: retention,
	}
}

func (s *InMemoryRevokedSubjectStore) Revoke(_ context.Context, subject string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizons[subject] = at
	return nil
}

func (s *InMemoryRevokedSubjectStore) RevokedAt(_ context.Context, subject string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.horizons[subject]
	return at, ok, nil
}

func (s *InMemoryRevokedSubjectStore) Cleanup(_ context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for subject, at := range s.horizons {
		if now.Sub(at) > s.retention {
			delete(s.horizons, subject)
		}
	}
}
