package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced alongside structured errors so clients can branch
// without parsing messages.
const (
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeTooManyAttempts     = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeSessionNotFound     = "SESSION_NOT_FOUND"
	TextCodeSessionDecodeError  = "SESSION_DECODE_ERROR"
	TextCodeSessionExpired      = "SESSION_EXPIRED"
	TextCodeDataParseError      = "DATA_PARSE_ERROR"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
	TextCodeInsufficientTier    = "INSUFFICIENT_TIER"
	TextCodeResetTokenInvalid   = "RESET_TOKEN_INVALID"
	TextCodeInvalidSlug         = "INVALID_SLUG"
	TextCodeNoOwnerOrganization = "NO_OWNER_ORGANIZATION"
	TextCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	TextCodeDuplicateSlug       = "DUPLICATE_SLUG"
)

// ErrIdentityNotFound is returned when a user lookup yields no record.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword is the uniform bad-credentials error. It is
// returned both for unknown identifiers and wrong passwords so sign-in
// cannot be used to probe for accounts.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned when the cooldown window is active.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts, try again later", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrUnableToFindSession is returned when request credentials carry no session.
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession is returned when the session token fails validation.
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionExpired is returned when a session exists but its lifetime lapsed.
var ErrSessionExpired = goerrors.New("session has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToParseData is a generic decode failure for inbound payloads.
var ErrUnableToParseData = goerrors.New("unable to parse data", goerrors.CategoryBadInput).
	WithTextCode(TextCodeDataParseError).
	WithCode(goerrors.CodeBadRequest)

// ErrInsufficientTier is the gate denial. CategoryAuthz carries the real
// reason for logs while the HTTP code stays 401 so callers cannot tell
// "exists but forbidden" apart from "not authenticated".
var ErrInsufficientTier = goerrors.New("insufficient privileges for this action", goerrors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientTier).
	WithCode(goerrors.CodeUnauthorized)

// ErrResetTokenInvalid is the single outward-facing password reset failure.
// Unknown, consumed, superseded, and expired tokens all surface this exact
// message; the internal reason travels in metadata only.
var ErrResetTokenInvalid = goerrors.New("invalid or expired password reset token", goerrors.CategoryValidation).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidSlug rejects organization slugs that are not lowercase URL-safe.
var ErrInvalidSlug = goerrors.New("slug must be lowercase letters, digits, or hyphens", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidSlug).
	WithCode(goerrors.CodeBadRequest)

// ErrNoOwnerOrganization is returned when admin provisioning finds no
// organization to attach the new admin to.
var ErrNoOwnerOrganization = goerrors.New("no organization available for admin provisioning", goerrors.CategoryValidation).
	WithTextCode(TextCodeNoOwnerOrganization).
	WithCode(goerrors.CodeBadRequest)

// resetTokenInvalid clones the uniform reset error and records the internal
// reason so logs can distinguish unknown vs consumed vs expired tokens.
func resetTokenInvalid(reason string) *goerrors.Error {
	clone := ErrResetTokenInvalid.Clone()
	if clone == nil {
		return ErrResetTokenInvalid
	}
	return clone.WithMetadata(map[string]any{"reason": reason})
}

// IsTokenExpiredError will check for expired session tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
