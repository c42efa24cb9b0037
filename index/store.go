package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrClaimed is returned by [Store.Reserve] when the identifier is already
// mapped to a different identity id.
var ErrClaimed = errors.New("identifier claimed by another identity")

// ErrRedisUnavailable is returned when the index backend cannot be reached
// or answers with a protocol-level failure.
var ErrRedisUnavailable = errors.New("index redis unavailable")

// ErrCorruptRow is returned when an index row holds a value that does not
// parse as an identity id.
var ErrCorruptRow = errors.New("index row corrupt")

const (
	reserveStatusReserved int64 = 0
	reserveStatusOwned    int64 = 1
	reserveStatusConflict int64 = 2
)

// reserveScript is the conditional write that substitutes for a uniqueness
// constraint: set the row only when absent, otherwise report whether the
// existing claim belongs to the same owner.
const reserveScript = `
local current = redis.call("GET", KEYS[1])
if current == false then
  redis.call("SET", KEYS[1], ARGV[1])
  return 0
end
if current == ARGV[1] then
  return 1
end
return 2
`

var reserveLua = redis.NewScript(reserveScript)

// Store is one uniqueness index table (username or email). All identifiers
// are normalized (trimmed, case-folded) before touching Redis, so two
// spellings of the same identifier always race on the same row.
//
// Store instances are intended to be configured during initialization and
// then treated as immutable.
type Store struct {
	redis redis.UniversalClient
	table string
}

// NewStore creates a Store for one index table. The table name becomes part
// of the Redis key namespace, e.g. prefix "gi" + table "username" yields
// keys "gi:ix:username:<identifier>".
func NewStore(redisClient redis.UniversalClient, prefix, table string) *Store {
	if prefix == "" {
		prefix = "gi"
	}
	return &Store{
		redis: redisClient,
		table: prefix + ":ix:" + table + ":",
	}
}

// Normalize trims surrounding whitespace and case-folds an identifier. Every
// Store operation applies it; callers that compare identifiers (e.g. rename
// diffing) must apply the same rule.
func Normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (s *Store) key(identifier string) string {
	return s.table + identifier
}

// Reserve claims identifier for ownerID via a single conditional write.
//
// The returned bool reports whether this call created the row: false for the
// empty identifier and for the idempotent already-owned case, so callers can
// tell a fresh reservation (which they must compensate on later failure)
// from a pre-existing one.
//
// A row owned by a different id fails with [ErrClaimed]; the caller decides
// whether that aborts the whole operation. Reserve never retries.
func (s *Store) Reserve(ctx context.Context, identifier string, ownerID int64) (bool, error) {
	identifier = Normalize(identifier)
	if identifier == "" {
		return false, nil
	}

	owner := strconv.FormatInt(ownerID, 10)
	status, err := reserveLua.Run(ctx, s.redis, []string{s.key(identifier)}, owner).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch status {
	case reserveStatusReserved:
		return true, nil
	case reserveStatusOwned:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrClaimed, identifier)
	}
}

// Release drops the row for identifier. Releasing an absent row is a no-op;
// the registration protocol releases old rows after renames and relies on
// that idempotence when replaying compensation.
func (s *Store) Release(ctx context.Context, identifier string) error {
	identifier = Normalize(identifier)
	if identifier == "" {
		return nil
	}

	if err := s.redis.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// LookupOwner resolves identifier to the identity id that currently claims
// it. The second return is false when no row exists.
func (s *Store) LookupOwner(ctx context.Context, identifier string) (int64, bool, error) {
	identifier = Normalize(identifier)
	if identifier == "" {
		return 0, false, nil
	}

	raw, err := s.redis.Get(ctx, s.key(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	owner, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrCorruptRow, raw)
	}

	return owner, true, nil
}
