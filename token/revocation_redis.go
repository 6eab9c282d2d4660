package token

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const revokedSubjectKeyPrefix = "revoked_subject:"

// RedisRevokedSubjectStore shares revocation horizons across server
// instances and survives restarts. Keys expire on their own once no live
// credential can predate them, so Cleanup is a no-op.
type RedisRevokedSubjectStore struct {
	client    *redis.Client
	retention time.Duration
}

var _ RevokedSubjectStore = (*RedisRevokedSubjectStore)(nil)

func NewRedisRevokedSubjectStore(client *redis.Client, retention time.Duration) *RedisRevokedSubjectStore {
	return &RedisRevokedSubjectStore{
		client:    client,
		retention: retention,
	}
}

func (s *RedisRevokedSubjectStore) Revoke(ctx context.Context, subject string, at time.Time) error {
	key := revokedSubjectKeyPrefix + subject
	if err := s.client.Set(ctx, key, strconv.FormatInt(at.UnixMilli(), 10), s.retention).Err(); err != nil {
		return errors.Wrap(err, "RedisRevokedSubjectStore.Revoke")
	}
	return nil
}

func (s *RedisRevokedSubjectStore) RevokedAt(ctx context.Context, subject string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, revokedSubjectKeyPrefix+subject).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "RedisRevokedSubjectStore.RevokedAt")
	}

	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "RedisRevokedSubjectStore.RevokedAt parse")
	}
	return time.UnixMilli(millis), true, nil
}

func (s *RedisRevokedSubjectStore) Cleanup(context.Context, time.Time) {}
