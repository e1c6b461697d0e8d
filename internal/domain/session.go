package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// DriverTier represents the pricing category of a driver.
type DriverTier string

const (
	DriverTierRegular DriverTier = "REGULAR"
	DriverTierVIP     DriverTier = "VIP"
)

// Valid reports whether the tier is one of the known tiers.
func (t DriverTier) Valid() bool {
	return t == DriverTierRegular || t == DriverTierVIP
}

// licensePlatePattern matches plates like "AB-123".
var licensePlatePattern = regexp.MustCompile(`^[A-Z]{2}-[0-9]{3}$`)

// IsValidLicensePlate checks the plate against the accepted format.
func IsValidLicensePlate(plate string) bool {
	return licensePlatePattern.MatchString(plate)
}

// Session represents one vehicle visit tracked by a parking meter.
type Session struct {
	ID             string
	LicensePlate   string
	Tier           DriverTier
	Currency       Currency
	Active         bool
	StartTime      time.Time
	StopTime       *time.Time // nil while the meter is running
	TransactionDay time.Time  // calendar date, midnight UTC
	AmountDue      decimal.Decimal
}

// Restart resets the session to a fresh running meter, keeping its identity.
func (s *Session) Restart(now time.Time, loc *time.Location, tier DriverTier, currency Currency) {
	s.Tier = tier
	s.Currency = currency
	s.Active = true
	s.StartTime = now
	s.StopTime = nil
	s.TransactionDay = DayOf(now, loc)
	s.AmountDue = decimal.Zero
}

// Stop marks the meter as stopped at the given instant.
func (s *Session) Stop(now time.Time) {
	s.StopTime = &now
	s.Active = false
}
