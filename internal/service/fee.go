package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"parking/internal/domain"
)

// ClockLayout is the time-of-day format accepted by FeeForClock.
const ClockLayout = "15:04:05"

// Tariff describes the hourly price ladder of one driver tier.
//
// Elapsed time is truncated to whole hours h:
//
//	h < 1      FirstHour
//	1 <= h < 2 SecondHour
//	h >= 2     SecondHour + PerExtraHour*(h-2)
type Tariff struct {
	FirstHour    decimal.Decimal
	SecondHour   decimal.Decimal
	PerExtraHour decimal.Decimal
}

// DefaultTariffs returns the price ladder for every tier.
func DefaultTariffs() map[domain.DriverTier]Tariff {
	return map[domain.DriverTier]Tariff{
		// 1 for the first hour, 2 for the second, then 1.5x of the previous rate.
		domain.DriverTierRegular: {
			FirstHour:    decimal.NewFromInt(1),
			SecondHour:   decimal.NewFromInt(3),
			PerExtraHour: decimal.New(30, -1),
		},
		// First hour free, 2 for the second, then 1.2x of the previous rate.
		domain.DriverTierVIP: {
			FirstHour:    decimal.Zero,
			SecondHour:   decimal.NewFromInt(2),
			PerExtraHour: decimal.New(24, -1),
		},
	}
}

// FeeCalculator converts a parking interval and a driver tier into the amount due.
type FeeCalculator struct {
	tariffs map[domain.DriverTier]Tariff
}

// NewFeeCalculator creates a FeeCalculator with the default tariffs.
func NewFeeCalculator() *FeeCalculator {
	return &FeeCalculator{tariffs: DefaultTariffs()}
}

// Fee returns the amount due for parking from start to stop, rounded to 2 decimal places.
func (c *FeeCalculator) Fee(start, stop time.Time, tier domain.DriverTier) (decimal.Decimal, error) {
	if start.IsZero() || stop.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: missing start or stop time", ErrInvalidDuration)
	}

	elapsed := stop.Sub(start)
	if elapsed < 0 {
		return decimal.Zero, fmt.Errorf("%w: stop %s is before start %s", ErrInvalidDuration,
			stop.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	return c.feeForHours(int64(elapsed/time.Hour), tier)
}

// FeeForClock computes the fee for two "HH:MM:SS" times of the same day.
func (c *FeeCalculator) FeeForClock(start, stop string, tier domain.DriverTier) (decimal.Decimal, error) {
	startTime, err := time.Parse(ClockLayout, start)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: start time %q", ErrInvalidDuration, start)
	}

	stopTime, err := time.Parse(ClockLayout, stop)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: stop time %q", ErrInvalidDuration, stop)
	}

	return c.Fee(startTime, stopTime, tier)
}

func (c *FeeCalculator) feeForHours(hours int64, tier domain.DriverTier) (decimal.Decimal, error) {
	tariff, ok := c.tariffs[tier]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}

	var fee decimal.Decimal
	switch {
	case hours < 1:
		fee = tariff.FirstHour
	case hours < 2:
		fee = tariff.SecondHour
	default:
		extra := decimal.NewFromInt(hours - 2)
		fee = tariff.SecondHour.Add(tariff.PerExtraHour.Mul(extra))
	}

	return fee.Round(2), nil
}
