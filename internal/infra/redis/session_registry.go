package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry marks channel occupancy in Redis so multiple service
// instances reject duplicate games for the same channel. SETNX makes the
// check-and-set atomic; the TTL is a safety net against instances that die
// without releasing.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{client: client, ttl: ttl}
}

func (r *SessionRegistry) TryAcquire(key string) bool {
	ok, err := r.client.SetNX(context.Background(), r.channelKey(key), "1", r.ttl).Result()
	if err != nil {
		// Treat registry outages as occupied rather than risking two games
		// fighting over one channel.
		return false
	}
	return ok
}

func (r *SessionRegistry) Release(key string) {
	_ = r.client.Del(context.Background(), r.channelKey(key)).Err()
}

func (r *SessionRegistry) channelKey(key string) string {
	return "trivia:channel:" + key
}
