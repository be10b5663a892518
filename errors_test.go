package auth_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-orgauth"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Legacy token expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name:     "Different structured error",
			err:      auth.ErrIdentityNotFound,
			expected: false,
		},
		{
			name:     "Different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.IsTokenExpiredError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Legacy malformed error (string match)",
			err:      errors.New("token is malformed"),
			expected: true,
		},
		{
			name:     "Legacy missing JWT error (string match)",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "Different legacy error",
			err:      errors.New("token is expired"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.IsMalformedError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestStructuredErrorProperties(t *testing.T) {
	t.Run("ErrIdentityNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, auth.ErrIdentityNotFound.Category)
		assert.Equal(t, "identity not found", auth.ErrIdentityNotFound.Message)
	})

	t.Run("ErrMismatchedHashAndPassword", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrMismatchedHashAndPassword.Category)
		assert.Equal(t, auth.TextCodeInvalidCreds, auth.ErrMismatchedHashAndPassword.TextCode)
		assert.Equal(t, "the credentials provided are invalid", auth.ErrMismatchedHashAndPassword.Message)
	})

	t.Run("ErrTooManyLoginAttempts", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryRateLimit, auth.ErrTooManyLoginAttempts.Category)
		assert.Equal(t, auth.TextCodeTooManyAttempts, auth.ErrTooManyLoginAttempts.TextCode)
	})

	t.Run("ErrUnableToFindSession", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrUnableToFindSession.Category)
		assert.Equal(t, auth.TextCodeSessionNotFound, auth.ErrUnableToFindSession.TextCode)
	})

	t.Run("ErrUnableToDecodeSession", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrUnableToDecodeSession.Category)
		assert.Equal(t, auth.TextCodeSessionDecodeError, auth.ErrUnableToDecodeSession.TextCode)
	})

	t.Run("ErrSessionExpired", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrSessionExpired.Category)
		assert.Equal(t, auth.TextCodeSessionExpired, auth.ErrSessionExpired.TextCode)
	})

	t.Run("ErrUnableToParseData", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryBadInput, auth.ErrUnableToParseData.Category)
		assert.Equal(t, auth.TextCodeDataParseError, auth.ErrUnableToParseData.TextCode)
	})

	t.Run("ErrNoEmptyString", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrNoEmptyString.Category)
		assert.Equal(t, auth.TextCodeEmptyPassword, auth.ErrNoEmptyString.TextCode)
	})

	t.Run("ErrInsufficientTier collapses to 401", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuthz, auth.ErrInsufficientTier.Category)
		assert.Equal(t, auth.TextCodeInsufficientTier, auth.ErrInsufficientTier.TextCode)
		assert.Equal(t, goerrors.CodeUnauthorized, auth.ErrInsufficientTier.Code)
	})

	t.Run("ErrResetTokenInvalid", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrResetTokenInvalid.Category)
		assert.Equal(t, auth.TextCodeResetTokenInvalid, auth.ErrResetTokenInvalid.TextCode)
		assert.Equal(t, "invalid or expired password reset token", auth.ErrResetTokenInvalid.Message)
	})

	t.Run("ErrInvalidSlug", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrInvalidSlug.Category)
		assert.Equal(t, auth.TextCodeInvalidSlug, auth.ErrInvalidSlug.TextCode)
	})

	t.Run("ErrNoOwnerOrganization", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrNoOwnerOrganization.Category)
		assert.Equal(t, auth.TextCodeNoOwnerOrganization, auth.ErrNoOwnerOrganization.TextCode)
	})
}
