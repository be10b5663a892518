package auth

import (
	"time"
)

// ResetState is the lifecycle state of a password reset token.
type ResetState string

const (
	// ResetStateIssued is a live token waiting to be consumed.
	ResetStateIssued ResetState = "issued"
	// ResetStateConsumed is a token that completed a password reset.
	ResetStateConsumed ResetState = "consumed"
	// ResetStateExpired is a token whose TTL lapsed unconsumed.
	ResetStateExpired ResetState = "expired"
	// ResetStateInvalidated is a token superseded by a newer request.
	ResetStateInvalidated ResetState = "invalidated"
)

// resetTransitions encodes the legal lifecycle moves. Consumed, expired,
// and invalidated are all terminal.
var resetTransitions = map[ResetState]map[ResetState]struct{}{
	ResetStateIssued: {
		ResetStateConsumed:    {},
		ResetStateExpired:     {},
		ResetStateInvalidated: {},
	},
}

// CanTransition reports whether moving from one reset state to another
// is a legal lifecycle step.
func CanTransition(from, to ResetState) bool {
	allowed, ok := resetTransitions[from]
	if !ok {
		return false
	}
	_, exists := allowed[to]
	return exists
}

// IsTerminalResetState reports whether a token in this state can never
// change again.
func IsTerminalResetState(state ResetState) bool {
	_, ok := resetTransitions[state]
	return !ok
}

// ResetStateOf derives the lifecycle state from a stored token row.
// Consumption and invalidation are explicit marks; expiry is computed
// against the clock so a stale row never reads as live.
func ResetStateOf(reset *PasswordReset, now time.Time) ResetState {
	if reset == nil {
		return ResetStateInvalidated
	}
	if reset.ConsumedAt != nil {
		return ResetStateConsumed
	}
	if reset.InvalidatedAt != nil {
		return ResetStateInvalidated
	}
	if reset.ExpiresAt != nil && !now.Before(*reset.ExpiresAt) {
		return ResetStateExpired
	}
	return ResetStateIssued
}

// EnsureConsumable verifies the token may move to the consumed state.
// Each failure mode carries a distinct internal reason while the error
// callers see is the single uniform reset failure.
func EnsureConsumable(reset *PasswordReset, now time.Time) error {
	switch ResetStateOf(reset, now) {
	case ResetStateIssued:
		return nil
	case ResetStateConsumed:
		return resetTokenInvalid("token already consumed")
	case ResetStateExpired:
		return resetTokenInvalid("token expired")
	default:
		return resetTokenInvalid("token invalidated")
	}
}
