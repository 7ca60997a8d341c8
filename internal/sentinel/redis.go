package sentinel

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis is a Sentinel shared across processes, for deployments where
// saves for the same user can land on different instances.
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedis connects and pings the server so misconfiguration fails at
// startup rather than on the first save.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &Redis{
		client:  client,
		prefix:  "accountkit:sentinel:",
		timeout: 250 * time.Millisecond,
	}, nil
}

func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Put(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.client.Set(ctx, r.prefix+key, "1", ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
