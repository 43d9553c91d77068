package adapter

import (
	"context"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RedisOptions holds the connection settings of the shared rate limit store
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisClient is the subset of the Redis client the rate limiter needs
//
//go:generate mockgen -source=redis.go -destination=../mocks/redis.go -package=mocks
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd

	// NewRateLimiter creates a GCRA limiter over this connection
	NewRateLimiter() RedisRateLimiter

	Close() error
}

// RedisRateLimiter consumes request budgets stored in Redis
type RedisRateLimiter interface {
	// Allow consumes one request of key's budget; Result.Allowed is 0 when the budget is spent
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

type realRedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client; no connection is made until first use
func NewRedisClient(opts RedisOptions) RedisClient {
	return &realRedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
	}
}

func (r *realRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	return r.client.Ping(ctx)
}

func (r *realRedisClient) NewRateLimiter() RedisRateLimiter {
	return &realRateLimiter{limiter: redis_rate.NewLimiter(r.client)}
}

func (r *realRedisClient) Close() error {
	return r.client.Close()
}

type realRateLimiter struct {
	limiter *redis_rate.Limiter
}

func (r *realRateLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	return r.limiter.Allow(ctx, key, limit)
}
