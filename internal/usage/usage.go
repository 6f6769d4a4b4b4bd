package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"MAILMUSE_BACK-END/internal/config"
)

// ErrLimitReached signals the caller's monthly quota is exhausted. Handlers
// translate it to 429 with guidance to supply a personal AI key.
var ErrLimitReached = errors.New("monthly generation limit reached")

// counterTTL keeps a month's counter alive slightly past the window so the
// usage endpoint can still report it at month end
const counterTTL = 35 * 24 * time.Hour

// Status reports a caller's quota consumption for the current month
type Status struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
	Exhausted bool `json:"exhausted"`
}

// CounterStore is the persistence surface for monthly counters
type CounterStore interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// Limiter enforces per-caller monthly generation quotas
type Limiter struct {
	store CounterStore
	now   func() time.Time
}

// NewLimiter creates a limiter over the given counter store
func NewLimiter(store CounterStore) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// key is scoped to the caller and the current calendar month
func (l *Limiter) key(callerKey string) string {
	return fmt.Sprintf("usage:%s:%s", callerKey, l.now().UTC().Format("2006-01"))
}

// Check returns the caller's quota status and ErrLimitReached when exhausted
func (l *Limiter) Check(ctx context.Context, callerKey string, limit int) (Status, error) {
	used, err := l.store.Get(ctx, l.key(callerKey))
	if err != nil {
		return Status{}, fmt.Errorf("failed to read usage counter: %w", err)
	}

	status := Status{Used: int(used), Limit: limit}
	if status.Used >= limit {
		status.Exhausted = true
		return status, ErrLimitReached
	}
	status.Remaining = limit - status.Used
	return status, nil
}

// Record counts one successful generation against the caller's month.
// Calls that ran on a personal key are not recorded.
func (l *Limiter) Record(ctx context.Context, callerKey string) error {
	if _, err := l.store.Increment(ctx, l.key(callerKey), counterTTL); err != nil {
		return fmt.Errorf("failed to increment usage counter: %w", err)
	}
	return nil
}

// RedisStore backs the limiter with Redis counters
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects the counter store to Redis
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Increment atomically bumps the counter, setting the TTL on first use
func (s *RedisStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Get reads the counter; a missing key reads as zero
func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return val, err
}

// Ping verifies Redis connectivity for readiness checks
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
