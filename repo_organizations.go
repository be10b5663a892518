package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Organizations interface {
	repository.Repository[*Organization]

	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	GetBySlugTx(ctx context.Context, tx bun.IDB, slug string) (*Organization, error)
	FirstCreatedBy(ctx context.Context, userID uuid.UUID) (*Organization, error)
	FirstCreatedByTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Organization, error)
}

type organizations struct {
	repository.Repository[*Organization]
	db *bun.DB
}

var _ Organizations = (*organizations)(nil)

func NewOrganizationsRepository(db *bun.DB) Organizations {
	repo := repository.NewRepository[*Organization](db, repository.ModelHandlers[*Organization]{
		NewRecord: func() *Organization { return &Organization{} },
		GetID: func(o *Organization) uuid.UUID {
			if o == nil {
				return uuid.Nil
			}
			return o.ID
		},
		SetID: func(o *Organization, id uuid.UUID) {
			if o != nil {
				o.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &organizations{
		Repository: repo,
		db:         db,
	}
}

func (a *organizations) GetBySlug(ctx context.Context, slug string) (*Organization, error) {
	return a.GetBySlugTx(ctx, a.db, slug)
}

func (a *organizations) GetBySlugTx(ctx context.Context, tx bun.IDB, slug string) (*Organization, error) {
	record := &Organization{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"slug": slug})
		}
		return nil, err
	}

	return record, nil
}

func (a *organizations) FirstCreatedBy(ctx context.Context, userID uuid.UUID) (*Organization, error) {
	return a.FirstCreatedByTx(ctx, a.db, userID)
}

// FirstCreatedByTx returns the oldest organization created by the given
// user, which provisioning treats as the caller's primary organization.
func (a *organizations) FirstCreatedByTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Organization, error) {
	record := &Organization{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.creator_id = ?", userID).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"creator_id": userID.String()})
		}
		return nil, err
	}

	return record, nil
}
