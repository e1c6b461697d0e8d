package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"parking/internal/domain"
	"parking/internal/metrics"
	"parking/internal/redis"
	"parking/internal/repository"
)

// DayProfitConfig contains day aggregation configuration.
type DayProfitConfig struct {
	BaseCurrency domain.Currency
	Lock         LockOptions
}

// DefaultDayProfitConfig returns the default day aggregation configuration.
func DefaultDayProfitConfig() DayProfitConfig {
	return DayProfitConfig{
		BaseCurrency: domain.BaseCurrency,
		Lock:         DefaultLockOptions(),
	}
}

// DayProfitService maintains the per-day profit totals.
type DayProfitService struct {
	dayRepo     repository.DayProfitRepository
	sessionRepo repository.SessionRepository
	cacheStore  redis.DayProfitCacheInterface
	lockStore   redis.LockStoreInterface
	log         logrus.FieldLogger
	config      DayProfitConfig
}

// NewDayProfitService creates a new DayProfitService.
// cacheStore may be nil; a nil lockStore falls back to in-process locking.
func NewDayProfitService(
	dayRepo repository.DayProfitRepository,
	sessionRepo repository.SessionRepository,
	cacheStore redis.DayProfitCacheInterface,
	lockStore redis.LockStoreInterface,
	log logrus.FieldLogger,
	config DayProfitConfig,
) *DayProfitService {
	if lockStore == nil {
		lockStore = NewLocalLockStore()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.BaseCurrency == "" {
		config.BaseCurrency = domain.BaseCurrency
	}
	if config.Lock == (LockOptions{}) {
		config.Lock = DefaultLockOptions()
	}
	return &DayProfitService{
		dayRepo:     dayRepo,
		sessionRepo: sessionRepo,
		cacheStore:  cacheStore,
		lockStore:   lockStore,
		log:         log.WithField("component", "day_profit"),
		config:      config,
	}
}

// ValidateDate returns date unchanged if it parses as "yyyy/mm/dd".
func (s *DayProfitService) ValidateDate(date string) (string, error) {
	if _, err := domain.ParseDay(date); err != nil {
		s.log.WithField("date", date).Debug("rejected unparseable date")
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return date, nil
}

// Get returns the day record for date, labelled with the requested currency.
// The stored total is relabelled, not converted.
func (s *DayProfitService) Get(ctx context.Context, date, currency string) (*domain.DayProfit, error) {
	day, cur, err := s.parseDayAndCurrency(date, currency)
	if err != nil {
		return nil, err
	}

	record, err := s.load(ctx, day)
	if err != nil {
		return nil, err
	}

	view := *record
	view.Currency = cur
	return &view, nil
}

// Amount returns the profit total for date.
func (s *DayProfitService) Amount(ctx context.Context, date, currency string) (decimal.Decimal, error) {
	record, err := s.Get(ctx, date, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return record.Profit, nil
}

// Upsert recomputes the day record for date, creating it if absent.
func (s *DayProfitService) Upsert(ctx context.Context, date, currency string) (*domain.DayProfit, error) {
	day, cur, err := s.parseDayAndCurrency(date, currency)
	if err != nil {
		return nil, err
	}
	return s.Recompute(ctx, day, cur)
}

// Recompute sums the amount due of every session attributed to day and stores
// the result, creating the record if it does not exist yet.
func (s *DayProfitService) Recompute(ctx context.Context, day time.Time, currency domain.Currency) (*domain.DayProfit, error) {
	defer newrelic.FromContext(ctx).StartSegment("DayProfitService/Recompute").End()

	var saved *domain.DayProfit
	err := withLock(ctx, s.lockStore, s.config.Lock, dayLockKey(day), func() error {
		sessions, err := s.sessionRepo.GetByTransactionDay(ctx, day)
		if err != nil {
			return fmt.Errorf("list sessions for %s: %w", domain.FormatDay(day), err)
		}

		profit := decimal.Zero
		for _, session := range sessions {
			profit = profit.Add(session.AmountDue)
		}

		record, err := s.dayRepo.GetByDate(ctx, day)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if record == nil {
			record = &domain.DayProfit{Date: day}
		}

		record.Currency = currency
		record.Profit = profit.Round(2)

		saved, err = s.dayRepo.Save(ctx, record)
		return err
	})
	metrics.RecordDayRecompute(err)
	if err != nil {
		s.log.WithError(err).WithField("day", domain.FormatDay(day)).Error("day profit recompute failed")
		return nil, err
	}

	if s.cacheStore != nil {
		if err := s.cacheStore.SetDayProfit(ctx, saved); err != nil {
			s.log.WithError(err).Warn("failed to refresh day profit cache")
			if err := s.cacheStore.InvalidateDayProfit(ctx, day); err != nil {
				s.log.WithError(err).WithField("day", domain.FormatDay(day)).Warn("failed to drop stale day profit cache entry")
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"day":      domain.FormatDay(day),
		"profit":   saved.Profit.StringFixed(2),
		"currency": saved.Currency,
	}).Info("day profit recomputed")

	return saved, nil
}

// load reads through the cache. Only Recompute writes cache entries, since it
// holds the day lock; a repository read here may already be stale.
func (s *DayProfitService) load(ctx context.Context, day time.Time) (*domain.DayProfit, error) {
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetDayProfit(ctx, day)
		if err != nil {
			s.log.WithError(err).Warn("day profit cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	return s.dayRepo.GetByDate(ctx, day)
}

func (s *DayProfitService) parseDayAndCurrency(date, currency string) (time.Time, domain.Currency, error) {
	day, err := domain.ParseDay(date)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	cur, err := ParseCurrency(currency, s.config.BaseCurrency)
	if err != nil {
		return time.Time{}, "", err
	}

	return day, cur, nil
}
