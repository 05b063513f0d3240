package balance

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const BalanceKeyPrefix = "leave:balance:"

func GetBalanceKey(employeeID string) string {
	return BalanceKeyPrefix + employeeID
}

// GetBalanceVersionKey holds a counter bumped on every invalidation.
func GetBalanceVersionKey(employeeID string) string {
	return GetBalanceKey(employeeID) + ":version"
}

// Cache is a read-through cache for balance lookups. It is advisory:
// callers log its errors and carry on.
//
// Readers take Version before loading from the database and store the
// result with SetIfVersion. A write that commits and invalidates in between
// bumps the version, so the stale read is dropped instead of cached.
type Cache interface {
	Get(ctx context.Context, employeeID string) (BalanceResponse, bool, error)
	Version(ctx context.Context, employeeID string) (int64, error)
	SetIfVersion(ctx context.Context, employeeID string, b BalanceResponse, version int64) (bool, error)
	Invalidate(ctx context.Context, employeeID string) error
}

// setIfVersionScript sets KEYS[1] only while KEYS[2] still holds ARGV[2].
// A missing version key counts as 0.
var setIfVersionScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if (current or "0") ~= ARGV[2] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`)

type redisCache struct {
	rdb        *redis.Client
	ttl        time.Duration
	versionTTL time.Duration
}

// NewCache returns a redis-backed cache, or a no-op cache when rdb is nil.
func NewCache(rdb *redis.Client, ttl time.Duration) Cache {
	if rdb == nil {
		return noopCache{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	// The version must outlive any value cached under it.
	versionTTL := 24 * time.Hour
	if 2*ttl > versionTTL {
		versionTTL = 2 * ttl
	}
	return &redisCache{rdb: rdb, ttl: ttl, versionTTL: versionTTL}
}

func (c *redisCache) Get(ctx context.Context, employeeID string) (BalanceResponse, bool, error) {
	val, err := c.rdb.Get(ctx, GetBalanceKey(employeeID)).Result()
	if errors.Is(err, redis.Nil) {
		return BalanceResponse{}, false, nil
	}
	if err != nil {
		return BalanceResponse{}, false, err
	}

	var resp BalanceResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return BalanceResponse{}, false, err
	}
	return resp, true, nil
}

func (c *redisCache) Version(ctx context.Context, employeeID string) (int64, error) {
	v, err := c.rdb.Get(ctx, GetBalanceVersionKey(employeeID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *redisCache) SetIfVersion(ctx context.Context, employeeID string, b BalanceResponse, version int64) (bool, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	keys := []string{GetBalanceKey(employeeID), GetBalanceVersionKey(employeeID)}
	n, err := setIfVersionScript.Run(ctx, c.rdb, keys, payload, version, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *redisCache) Invalidate(ctx context.Context, employeeID string) error {
	versionKey := GetBalanceVersionKey(employeeID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, c.versionTTL)
		pipe.Del(ctx, GetBalanceKey(employeeID))
		return nil
	})
	return err
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (BalanceResponse, bool, error) {
	return BalanceResponse{}, false, nil
}

func (noopCache) Version(context.Context, string) (int64, error) { return 0, nil }

func (noopCache) SetIfVersion(context.Context, string, BalanceResponse, int64) (bool, error) {
	return false, nil
}

func (noopCache) Invalidate(context.Context, string) error { return nil }
