package services

import (
	"context"
	"internship-portal/activity"
	"internship-portal/mail"
	"internship-portal/models"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================

// MockUserRepository is a mock implementation of UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

var _ UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(userID string) (*models.User, error) {
	return m.user(m.Called(userID))
}

func (m *MockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	return m.user(m.Called(email))
}

func (m *MockUserRepository) GetUserByResetTokenHash(hash string) (*models.User, error) {
	return m.user(m.Called(hash))
}

func (m *MockUserRepository) CreateUser(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) UpdateUser(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) UpdateUserStatus(userID string, status models.UserStatus) error {
	return m.Called(userID, status).Error(0)
}

func (m *MockUserRepository) UpdateUserPassword(userID, passwordHash string) error {
	return m.Called(userID, passwordHash).Error(0)
}

func (m *MockUserRepository) SetResetToken(userID, tokenHash string, expiresAt time.Time) error {
	return m.Called(userID, tokenHash, expiresAt).Error(0)
}

func (m *MockUserRepository) SetUserResume(userID, key string) error {
	return m.Called(userID, key).Error(0)
}

func (m *MockUserRepository) TouchLastLogin(userID string, at time.Time) error {
	return m.Called(userID, at).Error(0)
}

func (m *MockUserRepository) DeleteUser(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockUserRepository) ListUsers(filter models.UserFilter) ([]models.User, int, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) ListActiveStudentIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) ListActiveAdminIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSessionStore is a mock implementation of SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

var _ SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) Create(userID, ip, userAgent string) (*models.Session, error) {
	args := m.Called(userID, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Get(sessionID string) (*models.Session, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Touch(sessionID string) error {
	return m.Called(sessionID).Error(0)
}

func (m *MockSessionStore) Delete(sessionID string) error {
	return m.Called(sessionID).Error(0)
}

func (m *MockSessionStore) DeleteByUser(userID string) error {
	return m.Called(userID).Error(0)
}

// MockGoogleProvider is a mock implementation of GoogleProvider interface
type MockGoogleProvider struct {
	mock.Mock
}

var _ GoogleProvider = (*MockGoogleProvider)(nil)

func (m *MockGoogleProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockGoogleProvider) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GoogleIdentity), args.Error(1)
}

func (m *MockGoogleProvider) ExchangeCode(ctx context.Context, code string) (*GoogleIdentity, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GoogleIdentity), args.Error(1)
}

// ==================== FAKES ====================

// recordingAudit keeps every entry and security event in memory
type recordingAudit struct {
	mu      sync.Mutex
	entries []activity.Entry
	events  []models.SecurityEvent
}

func (r *recordingAudit) Record(_ context.Context, e activity.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) SecurityEvent(_ context.Context, ev models.SecurityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *recordingAudit) eventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Event)
	}
	return out
}

// fakeQueue collects queued mail
type fakeQueue struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (q *fakeQueue) Enqueue(msg mail.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *fakeQueue) subjects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.msgs))
	for _, m := range q.msgs {
		out = append(out, m.Subject)
	}
	return out
}

// countingInvalidator counts dashboard invalidations
type countingInvalidator struct {
	mu sync.Mutex
	n  int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
