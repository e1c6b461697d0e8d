package redis

import (
	"context"
	"time"

	"parking/internal/domain"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// DayProfitCacheInterface defines the interface for day profit caching.
type DayProfitCacheInterface interface {
	GetDayProfit(ctx context.Context, date time.Time) (*domain.DayProfit, error)
	SetDayProfit(ctx context.Context, day *domain.DayProfit) error
	InvalidateDayProfit(ctx context.Context, date time.Time) error
}

// IdempotencyStoreInterface defines the interface for replayable responses.
type IdempotencyStoreInterface interface {
	GetResponse(ctx context.Context, key string) (*StoredResponse, error)
	SaveResponse(ctx context.Context, key string, resp *StoredResponse) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface        = (*LockStore)(nil)
	_ DayProfitCacheInterface   = (*CacheStore)(nil)
	_ IdempotencyStoreInterface = (*IdempotencyStore)(nil)
)
