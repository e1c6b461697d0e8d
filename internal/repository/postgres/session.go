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

const sessionColumns = `id, license_plate, tier, currency, active, start_time, stop_time, transaction_day, amount_due`

// SessionRepository is a PostgreSQL implementation of repository.SessionRepository.
type SessionRepository struct {
	q Querier
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{q: db}
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByPlate retrieves the session registered for a license plate.
func (r *SessionRepository) GetByPlate(ctx context.Context, plate string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE license_plate = $1`
	return r.getOne(ctx, query, plate)
}

// GetByTransactionDay retrieves every session attributed to the given day.
func (r *SessionRepository) GetByTransactionDay(ctx context.Context, day time.Time) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE transaction_day = $1 ORDER BY start_time`
	return r.getMany(ctx, query, day)
}

// GetAll retrieves all sessions.
func (r *SessionRepository) GetAll(ctx context.Context) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY start_time DESC`
	return r.getMany(ctx, query)
}

// Save inserts a new session or updates an existing one.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	var stopTime sql.NullTime
	if session.StopTime != nil {
		stopTime = sql.NullTime{Time: *session.StopTime, Valid: true}
	}

	if session.ID == "" {
		session.ID = uuid.New().String()

		query := `
			INSERT INTO sessions (` + sessionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err := r.q.ExecContext(ctx, query,
			session.ID,
			session.LicensePlate,
			session.Tier,
			session.Currency,
			session.Active,
			session.StartTime,
			stopTime,
			session.TransactionDay,
			session.AmountDue,
		)
		if err != nil {
			session.ID = ""
			return nil, translateError(err)
		}
		return session, nil
	}

	query := `
		UPDATE sessions
		SET license_plate = $2, tier = $3, currency = $4, active = $5,
			start_time = $6, stop_time = $7, transaction_day = $8, amount_due = $9
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		session.ID,
		session.LicensePlate,
		session.Tier,
		session.Currency,
		session.Active,
		session.StartTime,
		stopTime,
		session.TransactionDay,
		session.AmountDue,
	)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, repository.ErrNotFound
	}

	return session, nil
}

func (r *SessionRepository) getOne(ctx context.Context, query string, arg any) (*domain.Session, error) {
	session, err := scanSession(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *SessionRepository) getMany(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var stopTime sql.NullTime

	err := row.Scan(
		&session.ID,
		&session.LicensePlate,
		&session.Tier,
		&session.Currency,
		&session.Active,
		&session.StartTime,
		&stopTime,
		&session.TransactionDay,
		&session.AmountDue,
	)
	if err != nil {
		return nil, err
	}

	if stopTime.Valid {
		t := stopTime.Time
		session.StopTime = &t
	}

	return &session, nil
}
