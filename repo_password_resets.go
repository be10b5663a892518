package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// consumeResetSQL marks a token consumed only while it is still live.
// The guard clauses make concurrent consumption race-safe: exactly one
// caller wins, everyone else matches zero rows.
var consumeResetSQL = `UPDATE "password_resets" AS "pwdr"
SET
	"consumed_at" = ?
WHERE
	"pwdr"."id" = ?
AND "pwdr"."consumed_at" IS NULL
AND "pwdr"."invalidated_at" IS NULL
AND "pwdr"."expires_at" > ?
AND "pwdr"."deleted_at" IS NULL
RETURNING *;`

type PasswordResets interface {
	repository.Repository[*PasswordReset]

	InvalidateActiveForUser(ctx context.Context, userID uuid.UUID) error
	InvalidateActiveForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, now time.Time) (*PasswordReset, error)
}

type passwordResets struct {
	repository.Repository[*PasswordReset]
	db *bun.DB
}

var _ PasswordResets = (*passwordResets)(nil)

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	repo := repository.NewRepository[*PasswordReset](db, repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &passwordResets{
		Repository: repo,
		db:         db,
	}
}

func (a *passwordResets) InvalidateActiveForUser(ctx context.Context, userID uuid.UUID) error {
	return a.InvalidateActiveForUserTx(ctx, a.db, userID)
}

// InvalidateActiveForUserTx supersedes every live token for the user.
// Issuing a new token always runs this first, so the latest token wins.
func (a *passwordResets) InvalidateActiveForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	now := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "password_resets" AS "pwdr"
		SET "invalidated_at" = ?
		WHERE "pwdr"."user_id" = ?
		AND "pwdr"."consumed_at" IS NULL
		AND "pwdr"."invalidated_at" IS NULL
		AND "pwdr"."deleted_at" IS NULL;
	`, now, userID).Exec(ctx)

	return err
}

// ConsumeTx atomically marks the token consumed. Returns record-not-found
// when the token was already consumed, superseded, expired, or never
// existed; the caller decides how much of that to reveal.
func (a *passwordResets) ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, now time.Time) (*PasswordReset, error) {
	res, err := a.Repository.RawTx(ctx, tx, consumeResetSQL, now, id.String(), now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"token": id.String()})
	}

	return res[0], nil
}
