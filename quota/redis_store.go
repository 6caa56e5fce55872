package quota

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "quota:"

// KEYS[1] set; ARGV: window start ms, event ms, limit, retention cutoff ms,
// member, retention ms
var addScript = redis.NewScript(`
local k = KEYS[1]
redis.call('ZREMRANGEBYSCORE', k, '-inf', '(' .. ARGV[4])
if redis.call('ZCOUNT', k, ARGV[1], '+inf') >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', k, ARGV[2], ARGV[5])
redis.call('PEXPIRE', k, ARGV[6])
return 1
`)

// RedisCounterStore keeps one sorted set per key, scored by event time in ms.
type RedisCounterStore struct {
	rdb *redis.Client
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Add(ctx context.Context, key string, windowStart, at time.Time, limit int64) (bool, error) {
	n, err := addScript.Run(ctx, s.rdb, []string{redisKeyPrefix + key},
		windowStart.UnixMilli(),
		at.UnixMilli(),
		limit,
		at.Add(-Retention).UnixMilli(),
		uuid.NewString(),
		Retention.Milliseconds(),
	).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisCounterStore) Count(ctx context.Context, key string, windowStart time.Time) (int64, error) {
	return s.rdb.ZCount(ctx, redisKeyPrefix+key, strconv.FormatInt(windowStart.UnixMilli(), 10), "+inf").Result()
}
