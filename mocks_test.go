package auth_test

import (
	"context"
	"database/sql"
	"time"

	auth "github.com/goliatone/go-orgauth"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// Repository mocks embed the interface so only the methods a test
// exercises need explicit stubs; anything else panics loudly.

type MockUsers struct {
	mock.Mock
	auth.Users
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, identifier)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, record)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

type MockOrganizations struct {
	mock.Mock
	auth.Organizations
}

func (m *MockOrganizations) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.Organization, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*auth.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*auth.Organization, error) {
	args := m.Called(ctx, tx, id)
	if o := args.Get(0); o != nil {
		return o.(*auth.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) GetBySlugTx(ctx context.Context, tx bun.IDB, slug string) (*auth.Organization, error) {
	args := m.Called(ctx, tx, slug)
	if o := args.Get(0); o != nil {
		return o.(*auth.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) FirstCreatedByTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*auth.Organization, error) {
	args := m.Called(ctx, tx, userID)
	if o := args.Get(0); o != nil {
		return o.(*auth.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) CreateTx(ctx context.Context, tx bun.IDB, record *auth.Organization, criteria ...repository.InsertCriteria) (*auth.Organization, error) {
	args := m.Called(ctx, tx, record)
	if o := args.Get(0); o != nil {
		return o.(*auth.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockMemberships struct {
	mock.Mock
	auth.Memberships
}

func (m *MockMemberships) HasAnyForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberships) FirstForUser(ctx context.Context, userID uuid.UUID) (*auth.Membership, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.(*auth.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMemberships) FirstForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*auth.Membership, error) {
	args := m.Called(ctx, tx, userID)
	if r := args.Get(0); r != nil {
		return r.(*auth.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMemberships) CreateTx(ctx context.Context, tx bun.IDB, record *auth.Membership, criteria ...repository.InsertCriteria) (*auth.Membership, error) {
	args := m.Called(ctx, tx, record)
	if r := args.Get(0); r != nil {
		return r.(*auth.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSessions struct {
	mock.Mock
	auth.Sessions
}

func (m *MockSessions) Create(ctx context.Context, record *auth.Session, criteria ...repository.InsertCriteria) (*auth.Session, error) {
	args := m.Called(ctx, record)
	if s := args.Get(0); s != nil {
		return s.(*auth.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessions) GetActiveByID(ctx context.Context, id uuid.UUID) (*auth.Session, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*auth.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessions) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessions) RevokeAllForUser(ctx context.Context, userID uuid.UUID, except ...uuid.UUID) error {
	args := m.Called(ctx, userID, except)
	return args.Error(0)
}

func (m *MockSessions) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, except ...uuid.UUID) error {
	args := m.Called(ctx, tx, userID, except)
	return args.Error(0)
}

type MockPasswordResets struct {
	mock.Mock
	auth.PasswordResets
}

func (m *MockPasswordResets) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.PasswordReset, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*auth.PasswordReset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*auth.PasswordReset, error) {
	args := m.Called(ctx, tx, id)
	if r := args.Get(0); r != nil {
		return r.(*auth.PasswordReset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) CreateTx(ctx context.Context, tx bun.IDB, record *auth.PasswordReset, criteria ...repository.InsertCriteria) (*auth.PasswordReset, error) {
	args := m.Called(ctx, tx, record)
	if r := args.Get(0); r != nil {
		return r.(*auth.PasswordReset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) InvalidateActiveForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

func (m *MockPasswordResets) ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, now time.Time) (*auth.PasswordReset, error) {
	args := m.Called(ctx, tx, id, now)
	if r := args.Get(0); r != nil {
		return r.(*auth.PasswordReset), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Users() auth.Users {
	return m.Called().Get(0).(auth.Users)
}

func (m *MockRepositoryManager) Organizations() auth.Organizations {
	return m.Called().Get(0).(auth.Organizations)
}

func (m *MockRepositoryManager) Memberships() auth.Memberships {
	return m.Called().Get(0).(auth.Memberships)
}

func (m *MockRepositoryManager) Sessions() auth.Sessions {
	return m.Called().Get(0).(auth.Sessions)
}

func (m *MockRepositoryManager) PasswordResets() auth.PasswordResets {
	return m.Called().Get(0).(auth.PasswordResets)
}

func (m *MockRepositoryManager) Validate() error {
	return m.Called().Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx invokes the callback with a zero transaction and propagates
// its error, mirroring how the real manager surfaces callback failures.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Issue(ctx context.Context, user *auth.User, opts ...auth.SessionIssueOption) (*auth.Session, string, error) {
	args := m.Called(ctx, user, opts)
	var session *auth.Session
	if s := args.Get(0); s != nil {
		session = s.(*auth.Session)
	}
	return session, args.String(1), args.Error(2)
}

func (m *MockSessionStore) Resolve(ctx context.Context, credentials string) *auth.Session {
	args := m.Called(ctx, credentials)
	if s := args.Get(0); s != nil {
		return s.(*auth.Session)
	}
	return nil
}

func (m *MockSessionStore) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID, except ...uuid.UUID) error {
	args := m.Called(ctx, userID, except)
	return args.Error(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Sign(sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	args := m.Called(sessionID, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Verify(raw string) (uuid.UUID, error) {
	args := m.Called(raw)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, email auth.ResetEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type capturingSink struct {
	events []auth.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt auth.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}
