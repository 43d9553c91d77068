package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/logger"
)

const healthCheckInterval = 10 * time.Second

// ErrLimiterUnavailable is returned when Redis is down and the local fallback is disabled
var ErrLimiterUnavailable = errors.New("rate limiter unavailable")

// Config holds the request budget shared by every API replica
type Config struct {
	RedisKeyPrefix      string
	RequestsPerMinute   int
	Burst               int
	EnableLocalFallback bool
}

// Decision is the result of a single Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter budgets requests per caller key
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit_limiter.go -package=mocks -mock_names=Limiter=MockRateLimiter
type Limiter interface {
	// Allow consumes one request from the key's budget
	Allow(ctx context.Context, key string) (Decision, error)

	// Close stops health checking and closes the Redis connection
	Close() error
}

type limiter struct {
	config         Config
	limit          redis_rate.Limit
	redis          adapter.RedisClient
	distributed    adapter.RedisRateLimiter
	clock          adapter.Clock
	redisAvailable atomic.Bool

	mu     sync.Mutex
	locals map[string]*rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

// NewLimiter creates a Redis backed limiter, falling back to per-process limits while Redis is down
func NewLimiter(cfg Config, rc adapter.RedisClient, clock adapter.Clock) (Limiter, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisAvailable := true
	if err := rc.Ping(ctx).Err(); err != nil {
		redisAvailable = false
		if !cfg.EnableLocalFallback {
			return nil, fmt.Errorf("redis unavailable and fallback disabled: %w", err)
		}
		logger.Warn("Redis unavailable, will use local fallback", zap.Error(err))
	}

	l := &limiter{
		config: cfg,
		limit: redis_rate.Limit{
			Rate:   cfg.RequestsPerMinute,
			Burst:  cfg.Burst,
			Period: time.Minute,
		},
		redis:       rc,
		distributed: rc.NewRateLimiter(),
		clock:       clock,
		locals:      make(map[string]*rate.Limiter),
		done:        make(chan struct{}),
	}
	l.redisAvailable.Store(redisAvailable)

	go l.monitorRedisHealth()

	logger.Info("Rate limiter initialized",
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("burst", cfg.Burst),
		zap.Bool("redis_available", redisAvailable),
		zap.Bool("local_fallback", cfg.EnableLocalFallback),
	)

	return l, nil
}

func (l *limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.redisAvailable.Load() {
		res, err := l.distributed.Allow(ctx, l.config.RedisKeyPrefix+key, l.limit)
		if err == nil {
			return Decision{
				Allowed:    res.Allowed > 0,
				Remaining:  res.Remaining,
				RetryAfter: max(res.RetryAfter, 0),
			}, nil
		}
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}

		l.redisAvailable.Store(false)
		if !l.config.EnableLocalFallback {
			return Decision{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
		logger.WarnCtx(ctx, "Redis rate limiter error, falling back to local", zap.Error(err))
	}

	if !l.config.EnableLocalFallback {
		return Decision{}, ErrLimiterUnavailable
	}
	return l.allowLocal(key), nil
}

// allowLocal applies the same budget in-process; replicas no longer share it
func (l *limiter) allowLocal(key string) Decision {
	l.mu.Lock()
	local, ok := l.locals[key]
	if !ok {
		local = rate.NewLimiter(rate.Limit(float64(l.config.RequestsPerMinute)/60), l.config.Burst)
		l.locals[key] = local
	}
	l.mu.Unlock()

	now := l.clock.Now()
	if local.AllowN(now, 1) {
		return Decision{Allowed: true, Remaining: int(local.TokensAt(now))}
	}

	r := local.ReserveN(now, 1)
	retryAfter := r.DelayFrom(now)
	r.CancelAt(now)
	return Decision{RetryAfter: retryAfter}
}

// monitorRedisHealth restores the distributed limiter once Redis answers again
func (l *limiter) monitorRedisHealth() {
	for {
		select {
		case <-l.done:
			return
		case <-l.clock.After(healthCheckInterval):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := l.redis.Ping(ctx).Err()
		cancel()

		wasAvailable := l.redisAvailable.Swap(err == nil)
		if !wasAvailable && err == nil {
			logger.Info("Redis connection restored")
		}
	}
}

func (l *limiter) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		if closeErr := l.redis.Close(); closeErr != nil {
			logger.Warn("Error closing Redis connection", zap.Error(closeErr))
			err = closeErr
		}
	})
	return err
}

// validateConfig validates and sets defaults for the configuration
func validateConfig(cfg *Config) error {
	if cfg.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be positive")
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute
	}
	if cfg.RedisKeyPrefix == "" {
		cfg.RedisKeyPrefix = "vicuna:ledger:limiter:"
	}
	return nil
}
