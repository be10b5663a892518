package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-orgauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSignOutWithoutSessionIsNoOp(t *testing.T) {
	store := &MockSessionStore{}

	handler := auth.NewSignOutHandler(store)
	err := handler.Execute(context.Background(), auth.SignOutMessage{
		Actor: auth.Actor{Tier: auth.TierAnonymous},
	})

	require.NoError(t, err)
	store.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestSignOutRevokesSession(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Role: auth.RoleUser}
	session := &auth.Session{ID: uuid.New(), UserID: user.ID, User: user}

	store := &MockSessionStore{}
	store.On("Revoke", mock.Anything, session.ID).Return(nil).Once()

	sink := &capturingSink{}
	handler := auth.NewSignOutHandler(store).WithActivitySink(sink)

	err := handler.Execute(context.Background(), auth.SignOutMessage{
		Actor: auth.Actor{User: user, Session: session, Tier: auth.TierAuthenticated},
	})

	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	assert.Equal(t, auth.ActivityEventSignOut, sink.events[0].EventType)
	assert.Equal(t, user.ID.String(), sink.events[0].UserID)

	store.AssertExpectations(t)
}
