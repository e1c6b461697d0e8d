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

// SessionConfig contains parking session configuration.
type SessionConfig struct {
	BaseCurrency domain.Currency
	Location     *time.Location // time zone that decides the transaction day
	Lock         LockOptions
}

// DefaultSessionConfig returns the default parking session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		BaseCurrency: domain.BaseCurrency,
		Location:     time.UTC,
		Lock:         DefaultLockOptions(),
	}
}

// SessionService owns the lifecycle of parking sessions.
type SessionService struct {
	sessionRepo      repository.SessionRepository
	dayProfitService *DayProfitService
	fees             *FeeCalculator
	lockStore        redis.LockStoreInterface
	log              logrus.FieldLogger
	config           SessionConfig
	now              func() time.Time
}

// NewSessionService creates a new SessionService.
// A nil lockStore falls back to in-process locking.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	dayProfitService *DayProfitService,
	fees *FeeCalculator,
	lockStore redis.LockStoreInterface,
	log logrus.FieldLogger,
	config SessionConfig,
) *SessionService {
	if lockStore == nil {
		lockStore = NewLocalLockStore()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.BaseCurrency == "" {
		config.BaseCurrency = domain.BaseCurrency
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Lock == (LockOptions{}) {
		config.Lock = DefaultLockOptions()
	}
	return &SessionService{
		sessionRepo:      sessionRepo,
		dayProfitService: dayProfitService,
		fees:             fees,
		lockStore:        lockStore,
		log:              log.WithField("component", "session"),
		config:           config,
		now:              time.Now,
	}
}

// WithClock replaces the time source.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// StartSessionRequest contains the parameters for starting a parking meter.
type StartSessionRequest struct {
	LicensePlate string
	Tier         string // empty means REGULAR
	Currency     string // empty means the base currency
}

// Start starts the meter for a license plate. A plate that already has a session
// gets that session reset in place: same ID, zero amount, no stop time, new start.
func (s *SessionService) Start(ctx context.Context, req StartSessionRequest) (*domain.Session, error) {
	defer newrelic.FromContext(ctx).StartSegment("SessionService/Start").End()

	if !domain.IsValidLicensePlate(req.LicensePlate) {
		s.log.WithField("plate", req.LicensePlate).Debug("rejected license plate")
		return nil, fmt.Errorf("%w: %q", ErrInvalidLicensePlate, req.LicensePlate)
	}

	tier, err := ParseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	currency, err := ParseCurrency(req.Currency, s.config.BaseCurrency)
	if err != nil {
		return nil, err
	}

	var saved *domain.Session
	var restarted bool
	err = withLock(ctx, s.lockStore, s.config.Lock, sessionLockKey(req.LicensePlate), func() error {
		session, err := s.sessionRepo.GetByPlate(ctx, req.LicensePlate)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		restarted = session != nil
		if session == nil {
			session = &domain.Session{LicensePlate: req.LicensePlate}
		}
		session.Restart(s.now(), s.config.Location, tier, currency)

		saved, err = s.sessionRepo.Save(ctx, session)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.SessionsStartedTotal.WithLabelValues(string(tier)).Inc()
	s.log.WithFields(logrus.Fields{
		"session_id": saved.ID,
		"plate":      saved.LicensePlate,
		"tier":       saved.Tier,
		"restarted":  restarted,
	}).Info("parking meter started")

	return saved, nil
}

// StopByID stops the meter of the session with the given ID.
func (s *SessionService) StopByID(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrInvalidSessionID
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.stop(ctx, session.LicensePlate, func() (*domain.Session, error) {
		return s.sessionRepo.GetByID(ctx, id)
	})
}

// StopByPlate stops the meter of the session registered for plate.
func (s *SessionService) StopByPlate(ctx context.Context, plate string) (*domain.Session, error) {
	return s.stop(ctx, plate, func() (*domain.Session, error) {
		return s.sessionRepo.GetByPlate(ctx, plate)
	})
}

// stop records the stop time, charges the fee and refreshes the day total.
// The session is re-read under its lock so a concurrent restart is not overwritten.
// Stopping a stopped session keeps its stop time and fee and only refreshes the day.
func (s *SessionService) stop(ctx context.Context, plate string, resolve func() (*domain.Session, error)) (*domain.Session, error) {
	defer newrelic.FromContext(ctx).StartSegment("SessionService/Stop").End()

	var saved *domain.Session
	charged := false
	err := withLock(ctx, s.lockStore, s.config.Lock, sessionLockKey(plate), func() error {
		session, err := resolve()
		if err != nil {
			return err
		}

		if !session.Active {
			saved = session
			return nil
		}

		stopTime := s.now()
		fee, err := s.fees.Fee(session.StartTime, stopTime, session.Tier)
		if err != nil {
			return err
		}

		session.Stop(stopTime)
		session.AmountDue = fee

		saved, err = s.sessionRepo.Save(ctx, session)
		charged = err == nil
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).WithField("plate", plate).Error("failed to stop parking meter")
		}
		return nil, err
	}

	fields := logrus.Fields{
		"session_id": saved.ID,
		"plate":      saved.LicensePlate,
		"amount":     saved.AmountDue.StringFixed(2),
		"currency":   saved.Currency,
	}
	if charged {
		metrics.SessionsStoppedTotal.WithLabelValues(string(saved.Tier)).Inc()
		metrics.FeesChargedTotal.WithLabelValues(string(saved.Currency)).Add(saved.AmountDue.InexactFloat64())
		s.log.WithFields(fields).Info("parking meter stopped")
	} else {
		s.log.WithFields(fields).Info("parking meter already stopped")
	}

	s.refreshDay(ctx, saved)
	return saved, nil
}

// refreshDay recomputes the day total of a stopped session. The stop is already
// persisted, so a failure is logged and repaired by the next stop or day upsert.
func (s *SessionService) refreshDay(ctx context.Context, session *domain.Session) {
	if s.dayProfitService == nil {
		return
	}
	if _, err := s.dayProfitService.Recompute(ctx, session.TransactionDay, session.Currency); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"session_id": session.ID,
			"day":        domain.FormatDay(session.TransactionDay),
		}).Warn("day profit not refreshed after stop")
	}
}

// TicketValidByID reports whether the session with the given ID is running.
// An unknown session is not active.
func (s *SessionService) TicketValidByID(ctx context.Context, id string) (bool, error) {
	return ticketValid(s.FindByID(ctx, id))
}

// TicketValidByPlate reports whether the session for plate is running.
// An unknown plate is not active.
func (s *SessionService) TicketValidByPlate(ctx context.Context, plate string) (bool, error) {
	return ticketValid(s.FindByPlate(ctx, plate))
}

func ticketValid(session *domain.Session, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrInvalidSessionID) {
			return false, nil
		}
		return false, err
	}
	return session.Active, nil
}

// AmountDueByID returns the amount due of the session with the given ID.
func (s *SessionService) AmountDueByID(ctx context.Context, id string) (decimal.Decimal, error) {
	session, err := s.FindByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return session.AmountDue, nil
}

// AmountDueByPlate returns the amount due of the session for plate.
func (s *SessionService) AmountDueByPlate(ctx context.Context, plate string) (decimal.Decimal, error) {
	session, err := s.FindByPlate(ctx, plate)
	if err != nil {
		return decimal.Zero, err
	}
	return session.AmountDue, nil
}

// FindByID retrieves a session by ID.
func (s *SessionService) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrInvalidSessionID
	}
	return s.sessionRepo.GetByID(ctx, id)
}

// FindByPlate retrieves the session registered for plate.
func (s *SessionService) FindByPlate(ctx context.Context, plate string) (*domain.Session, error) {
	return s.sessionRepo.GetByPlate(ctx, plate)
}

// List retrieves all sessions.
func (s *SessionService) List(ctx context.Context) ([]*domain.Session, error) {
	return s.sessionRepo.GetAll(ctx)
}
