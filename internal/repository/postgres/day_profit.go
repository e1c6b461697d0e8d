package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"parking/internal/domain"
	"parking/internal/repository"
)

// DayProfitRepository is a PostgreSQL implementation of repository.DayProfitRepository.
type DayProfitRepository struct {
	q Querier
}

// NewDayProfitRepository creates a new PostgreSQL day profit repository.
func NewDayProfitRepository(db *sql.DB) *DayProfitRepository {
	return &DayProfitRepository{q: db}
}

// GetByDate retrieves the record for a calendar day.
func (r *DayProfitRepository) GetByDate(ctx context.Context, date time.Time) (*domain.DayProfit, error) {
	query := `SELECT id, date, currency, profit FROM day_profits WHERE date = $1`

	var day domain.DayProfit
	err := r.q.QueryRowContext(ctx, query, date).Scan(
		&day.ID,
		&day.Date,
		&day.Currency,
		&day.Profit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &day, nil
}

// Save creates the record for its date or overwrites profit and currency of the existing one.
// The date is unique, so concurrent first writes for a day collapse into one row.
func (r *DayProfitRepository) Save(ctx context.Context, day *domain.DayProfit) (*domain.DayProfit, error) {
	id := day.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO day_profits (id, date, currency, profit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE
		SET currency = EXCLUDED.currency, profit = EXCLUDED.profit
		RETURNING id
	`

	if err := r.q.QueryRowContext(ctx, query, id, day.Date, day.Currency, day.Profit).Scan(&day.ID); err != nil {
		return nil, err
	}

	return day, nil
}
