package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
	"github.com/wardstockhq/wardstock-backend/pkg/redis"
)

// ProfileStore persists per-device identity state across restarts: the
// last-known platform profile and the manual-login name. A missing entry
// is not an error; reads return zero values.
type ProfileStore interface {
	Profile(ctx context.Context, deviceID string) (models.Profile, bool, error)
	SaveProfile(ctx context.Context, deviceID string, profile models.Profile) error
	ManualName(ctx context.Context, deviceID string) (string, error)
	SaveManualName(ctx context.Context, deviceID, name string) error
	Clear(ctx context.Context, deviceID string) error
}

type keyValue interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	ProfileKey(deviceID string) string
	ManualNameKey(deviceID string) string
}

type redisProfileStore struct {
	kv  keyValue
	ttl time.Duration
}

// NewRedisProfileStore builds a ProfileStore on the shared Redis client.
// A zero ttl keeps entries until logout.
func NewRedisProfileStore(client *redis.Client, ttl time.Duration) ProfileStore {
	return &redisProfileStore{kv: client, ttl: ttl}
}

func (s *redisProfileStore) Profile(ctx context.Context, deviceID string) (models.Profile, bool, error) {
	raw, err := s.kv.Get(ctx, s.kv.ProfileKey(deviceID))
	if errors.Is(err, redis.ErrNotFound) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read persisted profile")
	}
	var profile models.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return models.Profile{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode persisted profile")
	}
	return profile, true, nil
}

func (s *redisProfileStore) SaveProfile(ctx context.Context, deviceID string, profile models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode profile")
	}
	if err := s.kv.Set(ctx, s.kv.ProfileKey(deviceID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist profile")
	}
	return nil
}

func (s *redisProfileStore) ManualName(ctx context.Context, deviceID string) (string, error) {
	name, err := s.kv.Get(ctx, s.kv.ManualNameKey(deviceID))
	if errors.Is(err, redis.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read manual name")
	}
	return name, nil
}

func (s *redisProfileStore) SaveManualName(ctx context.Context, deviceID, name string) error {
	if err := s.kv.Set(ctx, s.kv.ManualNameKey(deviceID), name, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist manual name")
	}
	return nil
}

func (s *redisProfileStore) Clear(ctx context.Context, deviceID string) error {
	err := s.kv.Del(ctx, s.kv.ProfileKey(deviceID), s.kv.ManualNameKey(deviceID))
	if err != nil && !errors.Is(err, redis.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear persisted identity")
	}
	return nil
}
