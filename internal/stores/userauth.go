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

var (
	// ErrDuplicateID is returned by [UserAuthStore.Create] when a record
	// already exists under the candidate id.
	ErrDuplicateID = errors.New("user auth id already registered")
	// ErrRecordNotFound is returned when no record exists for the id.
	ErrRecordNotFound = errors.New("user auth record not found")
	// ErrRecordCorrupt is returned when a stored blob fails to decode.
	ErrRecordCorrupt = errors.New("user auth record corrupt")
	// ErrRedisUnavailable is returned on backend failures.
	ErrRedisUnavailable = errors.New("user auth redis unavailable")
)

// UserAuthRecord is the primary identity record. The root package exposes
// it as goIdent.UserAuth.
//
// ID is assigned once before registration and never changes. UserName and
// Email are the two globally unique attributes; at least one is always
// present on a persisted record. PasswordHash and Salt are argon2id output,
// DigestHA1Hash the RFC 2617 HA1 keyed by UserName.
type UserAuthRecord struct {
	ID            int64     `json:"id"`
	UserName      string    `json:"user_name,omitempty"`
	Email         string    `json:"email,omitempty"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
	PasswordHash  string    `json:"password_hash,omitempty"`
	Salt          string    `json:"salt,omitempty"`
	DigestHA1Hash string    `json:"digest_ha1_hash,omitempty"`
	CreatedDate   time.Time `json:"created_date"`
	ModifiedDate  time.Time `json:"modified_date"`
}

// Clone returns an independent copy so callers cannot mutate a snapshot the
// state machine still compares against.
func (r *UserAuthRecord) Clone() *UserAuthRecord {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

// UserAuthStore persists identity records under <prefix>:ua:<id>.
//
// UserAuthStore instances are intended to be configured during
// initialization and then treated as immutable.
type UserAuthStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewUserAuthStore creates a UserAuthStore with the given key prefix.
func NewUserAuthStore(redisClient redis.UniversalClient, prefix string) *UserAuthStore {
	if prefix == "" {
		prefix = "gi"
	}
	return &UserAuthStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *UserAuthStore) key(id int64) string {
	return s.prefix + ":ua:" + strconv.FormatInt(id, 10)
}

// Create writes a new record under its id, rejecting the write when any
// record already exists there. This is the conditional create that makes a
// replayed registration observable as [ErrDuplicateID] instead of a silent
// overwrite.
func (s *UserAuthStore) Create(ctx context.Context, record *UserAuthRecord) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}

	created, err := s.redis.SetNX(ctx, s.key(record.ID), encoded, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !created {
		return fmt.Errorf("%w: %d", ErrDuplicateID, record.ID)
	}

	return nil
}

// Save overwrites the record under its id. Used for updates after the new
// identifier reservations are already held, so the overwrite itself needs
// no guard.
func (s *UserAuthStore) Save(ctx context.Context, record *UserAuthRecord) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(record.ID), encoded, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get loads the record for id, or [ErrRecordNotFound].
func (s *UserAuthStore) Get(ctx context.Context, id int64) (*UserAuthRecord, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var record UserAuthRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}

	return &record, nil
}

// Delete tombstones the record. The bool reports whether a record existed;
// deleting an absent id is not an error.
func (s *UserAuthStore) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := s.redis.Del(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return removed > 0, nil
}
