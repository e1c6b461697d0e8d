package repository

import (
	"context"
	"time"

	"parking/internal/domain"
)

// SessionRepository defines the persistence operations for parking sessions.
type SessionRepository interface {
	// GetByID retrieves a session by ID.
	GetByID(ctx context.Context, id string) (*domain.Session, error)

	// GetByPlate retrieves the session registered for a license plate.
	GetByPlate(ctx context.Context, plate string) (*domain.Session, error)

	// GetByTransactionDay retrieves every session attributed to the given day.
	GetByTransactionDay(ctx context.Context, day time.Time) ([]*domain.Session, error)

	// Save inserts the session, or updates it when it already has an ID.
	// An ID is assigned on insert and written back to the session.
	Save(ctx context.Context, session *domain.Session) (*domain.Session, error)

	// GetAll retrieves all sessions.
	GetAll(ctx context.Context) ([]*domain.Session, error)
}
