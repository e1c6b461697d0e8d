package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"parking/internal/domain"
)

const dayProfitCachePrefix = "cache:day:"

// DefaultDayProfitCacheTTL bounds how stale a cached day total can get.
const DefaultDayProfitCacheTTL = 30 * time.Second

// CacheStore handles day profit caching in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore. A non-positive ttl uses DefaultDayProfitCacheTTL.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultDayProfitCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// CachedDayProfit represents a cached day profit record.
type CachedDayProfit struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Currency string          `json:"currency"`
	Profit   decimal.Decimal `json:"profit"`
}

// GetDayProfit retrieves a day record from cache. A miss returns nil, nil.
func (s *CacheStore) GetDayProfit(ctx context.Context, date time.Time) (*domain.DayProfit, error) {
	data, err := s.client.Get(ctx, dayProfitKey(date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedDayProfit
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	day, err := domain.ParseDay(cached.Date)
	if err != nil {
		return nil, err
	}

	return &domain.DayProfit{
		ID:       cached.ID,
		Date:     day,
		Currency: domain.Currency(cached.Currency),
		Profit:   cached.Profit,
	}, nil
}

// SetDayProfit stores a day record in cache.
func (s *CacheStore) SetDayProfit(ctx context.Context, day *domain.DayProfit) error {
	data, err := json.Marshal(CachedDayProfit{
		ID:       day.ID,
		Date:     domain.FormatDay(day.Date),
		Currency: string(day.Currency),
		Profit:   day.Profit,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, dayProfitKey(day.Date), data, s.ttl).Err()
}

// InvalidateDayProfit removes a day record from cache.
func (s *CacheStore) InvalidateDayProfit(ctx context.Context, date time.Time) error {
	return s.client.Del(ctx, dayProfitKey(date)).Err()
}

func dayProfitKey(date time.Time) string {
	return dayProfitCachePrefix + date.Format("2006-01-02")
}
