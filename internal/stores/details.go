package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UserAuthDetailsRecord is one linked OAuth/provider row for an identity.
// Rows are keyed by (provider, provider user id); the per-identity Redis
// set acts as the secondary index that makes bulk purge possible.
type UserAuthDetailsRecord struct {
	UserAuthID     int64             `json:"user_auth_id"`
	Provider       string            `json:"provider"`
	ProviderUserID string            `json:"provider_user_id"`
	UserName       string            `json:"user_name,omitempty"`
	Email          string            `json:"email,omitempty"`
	AccessToken    string            `json:"access_token,omitempty"`
	RefreshToken   string            `json:"refresh_token,omitempty"`
	Items          map[string]string `json:"items,omitempty"`
	CreatedDate    time.Time         `json:"created_date"`
	ModifiedDate   time.Time         `json:"modified_date"`
}

// UserAuthDetailsStore persists provider rows under
// <prefix>:uad:<provider>:<providerUserID> and indexes them per identity in
// the set <prefix>:uadix:<userAuthID>.
type UserAuthDetailsStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewUserAuthDetailsStore creates a UserAuthDetailsStore with the given key
// prefix.
func NewUserAuthDetailsStore(redisClient redis.UniversalClient, prefix string) *UserAuthDetailsStore {
	if prefix == "" {
		prefix = "gi"
	}
	return &UserAuthDetailsStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *UserAuthDetailsStore) rowKey(provider, providerUserID string) string {
	return s.prefix + ":uad:" + provider + ":" + providerUserID
}

func (s *UserAuthDetailsStore) indexKey(userAuthID int64) string {
	return s.prefix + ":uadix:" + strconv.FormatInt(userAuthID, 10)
}

// Save upserts a provider row and links it into the owner's index set. An
// existing row for the same (provider, provider user id) keeps its
// CreatedDate and merges token fields: empty incoming tokens do not erase
// previously stored ones.
func (s *UserAuthDetailsStore) Save(ctx context.Context, record *UserAuthDetailsRecord) error {
	if record.Provider == "" || record.ProviderUserID == "" {
		return errors.New("provider and provider user id required")
	}

	key := s.rowKey(record.Provider, record.ProviderUserID)

	existing, err := s.get(ctx, key)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		record.CreatedDate = existing.CreatedDate
		if record.AccessToken == "" {
			record.AccessToken = existing.AccessToken
		}
		if record.RefreshToken == "" {
			record.RefreshToken = existing.RefreshToken
		}
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, key, encoded, 0)
	pipe.SAdd(ctx, s.indexKey(record.UserAuthID), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get loads one provider row, or [ErrRecordNotFound].
func (s *UserAuthDetailsStore) Get(ctx context.Context, provider, providerUserID string) (*UserAuthDetailsRecord, error) {
	return s.get(ctx, s.rowKey(provider, providerUserID))
}

func (s *UserAuthDetailsStore) get(ctx context.Context, key string) (*UserAuthDetailsRecord, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var record UserAuthDetailsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}

	return &record, nil
}

// ListForUser returns every provider row linked to the identity, via the
// secondary index set. Dangling index members (row deleted out of band) are
// skipped.
func (s *UserAuthDetailsStore) ListForUser(ctx context.Context, userAuthID int64) ([]*UserAuthDetailsRecord, error) {
	keys, err := s.redis.SMembers(ctx, s.indexKey(userAuthID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	records := make([]*UserAuthDetailsRecord, 0, len(keys))
	for _, key := range keys {
		record, err := s.get(ctx, key)
		if errors.Is(err, ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// DeleteForUser purges every provider row linked to the identity and the
// index set itself. Used by identity removal; not part of the uniqueness
// invariant.
func (s *UserAuthDetailsStore) DeleteForUser(ctx context.Context, userAuthID int64) error {
	indexKey := s.indexKey(userAuthID)

	keys, err := s.redis.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	pipe := s.redis.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, indexKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}
