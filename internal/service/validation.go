package service

import (
	"fmt"
	"strings"

	"parking/internal/domain"
)

// ParseTier validates a tier name. An empty name means REGULAR.
func ParseTier(raw string) (domain.DriverTier, error) {
	if raw == "" {
		return domain.DriverTierRegular, nil
	}

	tier := domain.DriverTier(strings.ToUpper(strings.TrimSpace(raw)))
	if !tier.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, raw)
	}
	return tier, nil
}

// ParseCurrency validates a currency code. An empty code means fallback.
func ParseCurrency(raw string, fallback domain.Currency) (domain.Currency, error) {
	if raw == "" {
		return fallback, nil
	}

	currency := domain.Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if !currency.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
	}
	return currency, nil
}
