package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	auth "github.com/goliatone/go-orgauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreIssue(t *testing.T) {
	ctx := context.Background()
	sessions := &MockSessions{}
	tokens := &MockTokenService{}

	user := &auth.User{ID: uuid.New(), Role: auth.RoleUser}
	orgID := uuid.New()

	sessions.On("Create", mock.Anything, mock.MatchedBy(func(s *auth.Session) bool {
		return s.UserID == user.ID &&
			s.ActiveOrganizationID != nil && *s.ActiveOrganizationID == orgID &&
			s.IssuedAt != nil && s.ExpiresAt != nil
	})).Return(&auth.Session{ID: uuid.New(), UserID: user.ID}, nil).Once()

	tokens.On("Sign", mock.Anything, mock.Anything).Return("signed-token", nil).Once()

	store := auth.NewSessionStore(sessions, tokens)
	session, token, err := store.Issue(ctx, user, auth.WithActiveOrganization(orgID))

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, user, session.User)

	sessions.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestSessionStoreIssueWithoutUser(t *testing.T) {
	store := auth.NewSessionStore(&MockSessions{}, &MockTokenService{})

	_, _, err := store.Issue(context.Background(), nil)
	require.Error(t, err)

	_, _, err = store.Issue(context.Background(), &auth.User{})
	require.Error(t, err)
}

func TestSessionStoreResolveFailsClosed(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	t.Run("empty credentials", func(t *testing.T) {
		store := auth.NewSessionStore(&MockSessions{}, &MockTokenService{})
		assert.Nil(t, store.Resolve(ctx, ""))
	})

	t.Run("invalid token", func(t *testing.T) {
		tokens := &MockTokenService{}
		tokens.On("Verify", "bad-token").Return(uuid.Nil, auth.ErrUnableToDecodeSession).Once()

		store := auth.NewSessionStore(&MockSessions{}, tokens)
		assert.Nil(t, store.Resolve(ctx, "bad-token"))
	})

	t.Run("session lookup fails", func(t *testing.T) {
		id := uuid.New()
		tokens := &MockTokenService{}
		tokens.On("Verify", "token").Return(id, nil).Once()

		sessions := &MockSessions{}
		sessions.On("GetActiveByID", mock.Anything, id).Return(nil, errors.New("db down")).Once()

		store := auth.NewSessionStore(sessions, tokens)
		assert.Nil(t, store.Resolve(ctx, "token"))
	})

	t.Run("expired session", func(t *testing.T) {
		id := uuid.New()
		tokens := &MockTokenService{}
		tokens.On("Verify", "token").Return(id, nil).Once()

		sessions := &MockSessions{}
		sessions.On("GetActiveByID", mock.Anything, id).Return(&auth.Session{
			ID:        id,
			User:      &auth.User{ID: uuid.New()},
			ExpiresAt: &past,
		}, nil).Once()

		store := auth.NewSessionStore(sessions, tokens)
		assert.Nil(t, store.Resolve(ctx, "token"))
	})

	t.Run("session without user", func(t *testing.T) {
		id := uuid.New()
		tokens := &MockTokenService{}
		tokens.On("Verify", "token").Return(id, nil).Once()

		sessions := &MockSessions{}
		sessions.On("GetActiveByID", mock.Anything, id).Return(&auth.Session{
			ID:        id,
			ExpiresAt: &future,
		}, nil).Once()

		store := auth.NewSessionStore(sessions, tokens)
		assert.Nil(t, store.Resolve(ctx, "token"))
	})

	t.Run("valid session resolves", func(t *testing.T) {
		id := uuid.New()
		user := &auth.User{ID: uuid.New()}

		tokens := &MockTokenService{}
		tokens.On("Verify", "token").Return(id, nil).Once()

		sessions := &MockSessions{}
		sessions.On("GetActiveByID", mock.Anything, id).Return(&auth.Session{
			ID:        id,
			UserID:    user.ID,
			User:      user,
			ExpiresAt: &future,
		}, nil).Once()

		store := auth.NewSessionStore(sessions, tokens)
		session := store.Resolve(ctx, "token")
		require.NotNil(t, session)
		assert.Equal(t, user, session.User)
	})
}

func TestSessionStoreRevokeDelegates(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions := &MockSessions{}
	sessions.On("Revoke", mock.Anything, sessionID).Return(nil).Once()
	sessions.On("RevokeAllForUser", mock.Anything, userID, []uuid.UUID{sessionID}).Return(nil).Once()

	store := auth.NewSessionStore(sessions, &MockTokenService{})
	require.NoError(t, store.Revoke(ctx, sessionID))
	require.NoError(t, store.RevokeAllForUser(ctx, userID, sessionID))

	sessions.AssertExpectations(t)
}
