package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-orgauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(key string) auth.TokenService {
	return auth.NewTokenService([]byte(key), "test-issuer", jwt.ClaimStrings{"test-audience"}, nil)
}

func TestTokenServiceSignAndVerify(t *testing.T) {
	svc := newTestTokenService("test-signing-key")
	sessionID := uuid.New()

	token, err := svc.Sign(sessionID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestTokenServiceVerifyExpired(t *testing.T) {
	svc := newTestTokenService("test-signing-key")

	token, err := svc.Sign(uuid.New(), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, auth.ErrSessionExpired)
}

func TestTokenServiceVerifyWrongKey(t *testing.T) {
	signer := newTestTokenService("key-one")
	verifier := newTestTokenService("key-two")

	token, err := signer.Sign(uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestTokenServiceVerifyWrongIssuer(t *testing.T) {
	signer := auth.NewTokenService([]byte("shared-key"), "other-issuer", jwt.ClaimStrings{"test-audience"}, nil)
	verifier := newTestTokenService("shared-key")

	token, err := signer.Sign(uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestTokenServiceVerifyGarbage(t *testing.T) {
	svc := newTestTokenService("test-signing-key")

	_, err := svc.Verify("not-a-token")
	require.Error(t, err)

	_, err = svc.Verify("")
	require.Error(t, err)
}
