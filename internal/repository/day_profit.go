package repository

import (
	"context"
	"time"

	"parking/internal/domain"
)

// DayProfitRepository defines the persistence operations for per-day profit records.
type DayProfitRepository interface {
	// GetByDate retrieves the record for a calendar day.
	GetByDate(ctx context.Context, date time.Time) (*domain.DayProfit, error)

	// Save creates the record for its date or overwrites the existing one.
	Save(ctx context.Context, day *domain.DayProfit) (*domain.DayProfit, error)
}
