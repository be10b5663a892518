package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Memberships interface {
	repository.Repository[*Membership]

	HasAnyForUser(ctx context.Context, userID uuid.UUID) (bool, error)
	HasAnyForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (bool, error)
	FirstForUser(ctx context.Context, userID uuid.UUID) (*Membership, error)
	FirstForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Membership, error)
	ExistsForUserAndOrg(ctx context.Context, userID, organizationID uuid.UUID) (bool, error)
}

type memberships struct {
	repository.Repository[*Membership]
	db *bun.DB
}

var _ Memberships = (*memberships)(nil)

func NewMembershipsRepository(db *bun.DB) Memberships {
	repo := repository.NewRepository[*Membership](db, repository.ModelHandlers[*Membership]{
		NewRecord: func() *Membership { return &Membership{} },
		GetID: func(m *Membership) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Membership, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &memberships{
		Repository: repo,
		db:         db,
	}
}

func (a *memberships) HasAnyForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	return a.HasAnyForUserTx(ctx, a.db, userID)
}

func (a *memberships) HasAnyForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (bool, error) {
	count, err := tx.NewSelect().
		Model((*Membership)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *memberships) FirstForUser(ctx context.Context, userID uuid.UUID) (*Membership, error) {
	return a.FirstForUserTx(ctx, a.db, userID)
}

// FirstForUserTx returns the user's oldest membership with its
// organization loaded.
func (a *memberships) FirstForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Membership, error) {
	record := &Membership{}
	err := tx.NewSelect().
		Model(record).
		Relation("Organization").
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"user_id": userID.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *memberships) ExistsForUserAndOrg(ctx context.Context, userID, organizationID uuid.UUID) (bool, error) {
	count, err := a.db.NewSelect().
		Model((*Membership)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.organization_id = ?", organizationID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
