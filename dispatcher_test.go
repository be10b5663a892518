package auth_test

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-orgauth"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dispatcherFixture struct {
	dispatcher  *auth.Dispatcher
	repo        *MockRepositoryManager
	store       *MockSessionStore
	users       *MockUsers
	orgs        *MockOrganizations
	memberships *MockMemberships
	mailer      *MockMailer
}

func newDispatcherFixture() *dispatcherFixture {
	users := &MockUsers{}
	orgs := &MockOrganizations{}
	memberships := &MockMemberships{}
	repo := &MockRepositoryManager{}
	repo.On("Users").Return(users).Maybe()
	repo.On("Organizations").Return(orgs).Maybe()
	repo.On("Memberships").Return(memberships).Maybe()

	store := &MockSessionStore{}
	mailer := &MockMailer{}

	guard := auth.NewGuard(store, auth.NewRoleResolver(memberships))

	return &dispatcherFixture{
		dispatcher:  auth.NewDispatcher(repo, store, guard, mailer),
		repo:        repo,
		store:       store,
		users:       users,
		orgs:        orgs,
		memberships: memberships,
		mailer:      mailer,
	}
}

func sessionForTier(tier auth.Tier) *auth.Session {
	role := auth.RoleUser
	if tier == auth.TierOwner {
		role = auth.RoleOwner
	}

	user := &auth.User{ID: uuid.New(), Email: "pepe@example.com", Role: role}
	session := &auth.Session{ID: uuid.New(), UserID: user.ID, User: user}

	if tier == auth.TierOrgAdmin {
		orgID := uuid.New()
		session.ActiveOrganizationID = &orgID
	}
	return session
}

func TestDispatcherRejectsInvalidPayload(t *testing.T) {
	f := newDispatcherFixture()

	_, err := f.dispatcher.SignIn(context.Background(), auth.SignInPayload{
		Email: "not-an-email",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
	assert.Contains(t, richErr.Metadata, "email")
	assert.Contains(t, richErr.Metadata, "password")

	f.users.AssertNotCalled(t, "GetByIdentifier", mock.Anything, mock.Anything)
}

func TestDispatcherMasksInternalFailures(t *testing.T) {
	f := newDispatcherFixture()

	f.users.On("GetByIdentifier", mock.Anything, "pepe@example.com").
		Return(nil, assert.AnError).Once()

	_, err := f.dispatcher.SignIn(context.Background(), auth.SignInPayload{
		Email:    "pepe@example.com",
		Password: "password12345",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "Internal Server Error", richErr.Message)
	assert.Empty(t, richErr.Metadata)
}

func TestDispatcherSurfacesCallerErrors(t *testing.T) {
	f := newDispatcherFixture()

	f.users.On("GetByIdentifier", mock.Anything, "pepe@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	_, err := f.dispatcher.SignIn(context.Background(), auth.SignInPayload{
		Email:    "pepe@example.com",
		Password: "password12345",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeInvalidCreds, richErr.TextCode)
}

func TestDispatcherSignOutRedirects(t *testing.T) {
	f := newDispatcherFixture()

	session := sessionForTier(auth.TierAuthenticated)
	f.store.On("Resolve", mock.Anything, "token").Return(session).Once()
	f.memberships.On("HasAnyForUser", mock.Anything, session.UserID).Return(false, nil).Maybe()
	f.store.On("Revoke", mock.Anything, session.ID).Return(nil).Once()

	err := f.dispatcher.SignOut(context.Background(), auth.RequestContext{Credentials: "token"})

	redirect, ok := auth.IsRedirect(err)
	require.True(t, ok)
	assert.Equal(t, "/sign-in", redirect.Location)
	assert.Equal(t, http.StatusSeeOther, redirect.Status)

	f.store.AssertExpectations(t)
}

func TestDispatcherChangePasswordRequiresSession(t *testing.T) {
	f := newDispatcherFixture()

	f.store.On("Resolve", mock.Anything, "").Return(nil).Once()

	err := f.dispatcher.ChangePassword(context.Background(), auth.RequestContext{}, auth.ChangePasswordPayload{
		CurrentPassword: "old-password-12",
		NewPassword:     "new-password-12",
	})

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeInsufficientTier, richErr.TextCode)
	assert.Equal(t, goerrors.CodeUnauthorized, richErr.Code)
}

func TestDispatcherCreateOrganizationDeniedBelowOwner(t *testing.T) {
	f := newDispatcherFixture()

	session := sessionForTier(auth.TierOrgAdmin)
	f.store.On("Resolve", mock.Anything, "token").Return(session).Once()

	_, err := f.dispatcher.CreateOrganization(
		context.Background(),
		auth.RequestContext{Credentials: "token"},
		auth.CreateOrganizationPayload{Name: "Acme", Slug: "acme"},
	)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeInsufficientTier, richErr.TextCode)
	assert.Equal(t, goerrors.CodeUnauthorized, richErr.Code)
}

func TestDispatcherCheckRouteAccess(t *testing.T) {
	testCases := []struct {
		name     string
		session  *auth.Session
		required auth.Tier
		allowed  bool
		location string
	}{
		{
			name:     "anonymous goes to sign in",
			session:  nil,
			required: auth.TierAuthenticated,
			location: "/sign-in",
		},
		{
			name:     "authenticated allowed at its floor",
			session:  sessionForTier(auth.TierAuthenticated),
			required: auth.TierAuthenticated,
			allowed:  true,
		},
		{
			name:     "authenticated short of admin goes to user home",
			session:  sessionForTier(auth.TierAuthenticated),
			required: auth.TierOrgAdmin,
			location: "/user",
		},
		{
			name:     "org admin short of owner goes to dashboard",
			session:  sessionForTier(auth.TierOrgAdmin),
			required: auth.TierOwner,
			location: "/dashboard",
		},
		{
			name:     "owner allowed everywhere",
			session:  sessionForTier(auth.TierOwner),
			required: auth.TierOwner,
			allowed:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newDispatcherFixture()

			if tc.session == nil {
				f.store.On("Resolve", mock.Anything, "token").Return(nil).Once()
			} else {
				f.store.On("Resolve", mock.Anything, "token").Return(tc.session).Once()
				f.memberships.On("HasAnyForUser", mock.Anything, tc.session.UserID).
					Return(false, nil).Maybe()
			}

			actor, err := f.dispatcher.CheckRouteAccess(
				context.Background(),
				auth.RequestContext{Credentials: "token"},
				tc.required,
			)

			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.session, actor.Session)
				return
			}

			redirect, ok := auth.IsRedirect(err)
			require.True(t, ok)
			assert.Equal(t, tc.location, redirect.Location)
		})
	}
}

func TestDispatcherRoutesCanBeOverridden(t *testing.T) {
	f := newDispatcherFixture()
	f.dispatcher.WithRoutes("/login", "", "")

	f.store.On("Resolve", mock.Anything, "").Return(nil).Once()

	_, err := f.dispatcher.CheckRouteAccess(
		context.Background(),
		auth.RequestContext{},
		auth.TierAuthenticated,
	)

	redirect, ok := auth.IsRedirect(err)
	require.True(t, ok)
	assert.Equal(t, "/login", redirect.Location)
}
