package tests

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"parking/internal/domain"
	"parking/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK SESSION REPOSITORY
// ──────────────────────────────────────────────

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	seq      int

	// Counters for verification
	SaveCallCount       int32
	GetByPlateCallCount int32

	// Error injection
	SaveError       error
	GetByPlateError error
	GetByDayError   error
}

// NewMockSessionRepository creates a new mock session repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

// AddSession adds a session to the mock repository.
func (m *MockSessionRepository) AddSession(session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *session
	return &copy, nil
}

func (m *MockSessionRepository) GetByPlate(ctx context.Context, plate string) (*domain.Session, error) {
	atomic.AddInt32(&m.GetByPlateCallCount, 1)
	if m.GetByPlateError != nil {
		return nil, m.GetByPlateError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.LicensePlate == plate {
			copy := *s
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockSessionRepository) GetByTransactionDay(ctx context.Context, day time.Time) ([]*domain.Session, error) {
	if m.GetByDayError != nil {
		return nil, m.GetByDayError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Session
	for _, s := range m.sessions {
		if s.TransactionDay.Equal(day) {
			copy := *s
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return nil, m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.ID == "" {
		for _, s := range m.sessions {
			if s.LicensePlate == session.LicensePlate {
				return nil, ErrMockDBConstraint
			}
		}
		m.seq++
		session.ID = "session-" + strconv.Itoa(m.seq)
	} else if _, ok := m.sessions[session.ID]; !ok {
		return nil, repository.ErrNotFound
	}

	stored := *session
	m.sessions[session.ID] = &stored
	copy := stored
	return &copy, nil
}

func (m *MockSessionRepository) GetAll(ctx context.Context) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		copy := *s
		result = append(result, &copy)
	}
	return result, nil
}

// GetSession returns the stored session for test assertions.
func (m *MockSessionRepository) GetSession(id string) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// CountSessions returns the number of stored sessions.
func (m *MockSessionRepository) CountSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ──────────────────────────────────────────────
// MOCK DAY PROFIT REPOSITORY
// ──────────────────────────────────────────────

// MockDayProfitRepository is a mock implementation of DayProfitRepository.
type MockDayProfitRepository struct {
	mu   sync.RWMutex
	days map[time.Time]*domain.DayProfit
	seq  int

	// Counters for verification
	SaveCallCount      int32
	GetByDateCallCount int32

	// Error injection
	SaveError error
}

// NewMockDayProfitRepository creates a new mock day profit repository.
func NewMockDayProfitRepository() *MockDayProfitRepository {
	return &MockDayProfitRepository{
		days: make(map[time.Time]*domain.DayProfit),
	}
}

// AddDay adds a day record to the mock repository.
func (m *MockDayProfitRepository) AddDay(day *domain.DayProfit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day.Date] = day
}

func (m *MockDayProfitRepository) GetByDate(ctx context.Context, date time.Time) (*domain.DayProfit, error) {
	atomic.AddInt32(&m.GetByDateCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	day, ok := m.days[date]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *day
	return &copy, nil
}

func (m *MockDayProfitRepository) Save(ctx context.Context, day *domain.DayProfit) (*domain.DayProfit, error) {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return nil, m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *day
	if existing, ok := m.days[day.Date]; ok {
		stored.ID = existing.ID
	} else if stored.ID == "" {
		m.seq++
		stored.ID = "day-" + strconv.Itoa(m.seq)
	}
	m.days[day.Date] = &stored

	copy := stored
	return &copy, nil
}

// GetDay returns the stored record for test assertions.
func (m *MockDayProfitRepository) GetDay(date time.Time) *domain.DayProfit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.days[date]
}

// CountDays returns the number of stored day records.
func (m *MockDayProfitRepository) CountDays() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.days)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
	refusePrefix        string
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refusePrefix != "" && strings.HasPrefix(key, m.refusePrefix) {
		return "", false, nil
	}

	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return "", false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return key, true, nil
}

func (m *MockLockStore) Release(ctx context.Context, key, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

// RefuseKeysWithPrefix makes every key starting with prefix look held by
// another owner. An empty prefix clears it.
func (m *MockLockStore) RefuseKeysWithPrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refusePrefix = prefix
}

// IsLocked checks if a key is locked (for test assertions).
func (m *MockLockStore) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[key]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK DAY PROFIT CACHE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of the day profit cache.
type MockCacheStore struct {
	mu   sync.Mutex
	days map[time.Time]domain.DayProfit

	// Counters
	GetCallCount int32
	SetCallCount int32

	// Error injection
	GetError        error
	SetError        error
	InvalidateError error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		days: make(map[time.Time]domain.DayProfit),
	}
}

func (m *MockCacheStore) GetDayProfit(ctx context.Context, date time.Time) (*domain.DayProfit, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	day, ok := m.days[date]
	if !ok {
		return nil, nil
	}
	return &day, nil
}

func (m *MockCacheStore) SetDayProfit(ctx context.Context, day *domain.DayProfit) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day.Date] = *day
	return nil
}

func (m *MockCacheStore) InvalidateDayProfit(ctx context.Context, date time.Time) error {
	if m.InvalidateError != nil {
		return m.InvalidateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.days, date)
	return nil
}

// Cached returns the cached record for test assertions.
func (m *MockCacheStore) Cached(date time.Time) (domain.DayProfit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day, ok := m.days[date]
	return day, ok
}

// ──────────────────────────────────────────────
// TEST CLOCK
// ──────────────────────────────────────────────

// FakeClock is a manually advanced time source.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at now.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
