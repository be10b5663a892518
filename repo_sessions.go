package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Sessions interface {
	repository.Repository[*Session]

	GetActiveByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, except ...uuid.UUID) error
	RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, except ...uuid.UUID) error
}

type sessions struct {
	repository.Repository[*Session]
	db *bun.DB
}

var _ Sessions = (*sessions)(nil)

func NewSessionsRepository(db *bun.DB) Sessions {
	repo := repository.NewRepository[*Session](db, repository.ModelHandlers[*Session]{
		NewRecord: func() *Session { return &Session{} },
		GetID: func(s *Session) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Session, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
	})

	return &sessions{
		Repository: repo,
		db:         db,
	}
}

// GetActiveByID loads a session with its user, excluding revoked rows.
// Expiry is checked by the caller against its own clock.
func (a *sessions) GetActiveByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	record := &Session{}
	err := a.db.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.revoked_at IS NULL").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"session_id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *sessions) Revoke(ctx context.Context, id uuid.UUID) error {
	return a.RevokeTx(ctx, a.db, id)
}

func (a *sessions) RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	now := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "sessions" AS "ses"
		SET "revoked_at" = ?
		WHERE "ses"."id" = ?
		AND "ses"."revoked_at" IS NULL;
	`, now, id).Exec(ctx)

	return err
}

func (a *sessions) RevokeAllForUser(ctx context.Context, userID uuid.UUID, except ...uuid.UUID) error {
	return a.RevokeAllForUserTx(ctx, a.db, userID, except...)
}

func (a *sessions) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, except ...uuid.UUID) error {
	now := time.Now()

	if len(except) > 0 {
		_, err := tx.NewRaw(`
			UPDATE "sessions" AS "ses"
			SET "revoked_at" = ?
			WHERE "ses"."user_id" = ?
			AND "ses"."id" != ?
			AND "ses"."revoked_at" IS NULL;
		`, now, userID, except[0]).Exec(ctx)
		return err
	}

	_, err := tx.NewRaw(`
		UPDATE "sessions" AS "ses"
		SET "revoked_at" = ?
		WHERE "ses"."user_id" = ?
		AND "ses"."revoked_at" IS NULL;
	`, now, userID).Exec(ctx)

	return err
}
