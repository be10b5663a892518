package auth

import (
	"context"
	"regexp"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// slugPattern is the only legal shape for an organization handle.
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSlug reports whether the slug is lowercase URL-safe.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

type CreateOrganizationMessage struct {
	Actor      Actor
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Logo       string `json:"logo"`
	OnResponse func(resp *CreateOrganizationResponse)
}

func (e CreateOrganizationMessage) Type() string { return "org.create" }

type CreateOrganizationResponse struct {
	Organization *Organization
	Membership   *Membership
}

type CreateOrganizationHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

func NewCreateOrganizationHandler(repo RepositoryManager) *CreateOrganizationHandler {
	return &CreateOrganizationHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *CreateOrganizationHandler) WithActivitySink(sink ActivitySink) *CreateOrganizationHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *CreateOrganizationHandler) WithLogger(logger Logger) *CreateOrganizationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *CreateOrganizationHandler) Execute(ctx context.Context, event CreateOrganizationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during organization creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateOrganizationHandler) execute(ctx context.Context, event CreateOrganizationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	actor := event.Actor
	if err := Authorize(TierOwner, actor.Tier); err != nil {
		return err
	}

	if !ValidSlug(event.Slug) {
		return ErrInvalidSlug.Clone().WithMetadata(map[string]any{"slug": event.Slug})
	}

	var org *Organization
	var membership *Membership

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Organizations().GetBySlugTx(ctx, tx, event.Slug); err == nil {
			return goerrors.New("an organization with this slug already exists", goerrors.CategoryConflict).
				WithTextCode(TextCodeDuplicateSlug).
				WithCode(goerrors.CodeConflict)
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing slug")
		}

		record := &Organization{
			ID:        uuid.New(),
			Name:      event.Name,
			Slug:      event.Slug,
			Logo:      event.Logo,
			CreatorID: actor.User.ID,
		}

		var err error
		org, err = h.repo.Organizations().CreateTx(ctx, tx, record)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create organization")
		}

		// the creator is always the first member
		membership, err = h.repo.Memberships().CreateTx(ctx, tx, &Membership{
			ID:             uuid.New(),
			UserID:         actor.User.ID,
			OrganizationID: org.ID,
			Role:           MembershipRoleOwner,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create creator membership")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "organization creation transaction failed")
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType:      ActivityEventOrganizationCreated,
		Actor:          actor.Ref(),
		UserID:         actor.User.ID.String(),
		OrganizationID: org.ID.String(),
		Metadata:       map[string]any{"slug": org.Slug},
	})

	if event.OnResponse != nil {
		event.OnResponse(&CreateOrganizationResponse{
			Organization: org,
			Membership:   membership,
		})
	}

	return nil
}
