package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CreateAdminMessage struct {
	Actor      Actor
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	OnResponse func(resp *CreateAdminResponse)
}

func (e CreateAdminMessage) Type() string { return "org.admin.create" }

type CreateAdminResponse struct {
	User         *User
	Organization *Organization
	Membership   *Membership
}

type CreateAdminHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

func NewCreateAdminHandler(repo RepositoryManager) *CreateAdminHandler {
	return &CreateAdminHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *CreateAdminHandler) WithActivitySink(sink ActivitySink) *CreateAdminHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *CreateAdminHandler) WithLogger(logger Logger) *CreateAdminHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *CreateAdminHandler) Execute(ctx context.Context, event CreateAdminMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admin creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateAdminHandler) execute(ctx context.Context, event CreateAdminMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	actor := event.Actor
	if err := Authorize(TierOwner, actor.Tier); err != nil {
		return err
	}

	phone, err := normalizePhone(event.Phone)
	if err != nil {
		return err
	}

	var admin *User
	var org *Organization
	var membership *Membership

	// user and membership are written in the same transaction so a
	// failure can never leave an admin without an organization
	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		org, err = h.resolveOrganization(ctx, tx, actor)
		if err != nil {
			return err
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if _, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.Email); err == nil {
			return goerrors.New("an account with this email already exists", goerrors.CategoryConflict).
				WithTextCode(TextCodeDuplicateEmail).
				WithCode(goerrors.CodeConflict)
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
		}

		admin, err = h.repo.Users().CreateTx(ctx, tx, &User{
			ID:           uuid.New(),
			Name:         event.Name,
			Email:        event.Email,
			Phone:        phone,
			PasswordHash: hash,
			Role:         RoleAdmin,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create admin user").
				WithTextCode(TextCodeDuplicateEmail).
				WithCode(goerrors.CodeConflict)
		}

		membership, err = h.repo.Memberships().CreateTx(ctx, tx, &Membership{
			ID:             uuid.New(),
			UserID:         admin.ID,
			OrganizationID: org.ID,
			Role:           MembershipRoleAdmin,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create admin membership")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "admin creation transaction failed")
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType:      ActivityEventAdminCreated,
		Actor:          actor.Ref(),
		UserID:         admin.ID.String(),
		OrganizationID: org.ID.String(),
	})

	if event.OnResponse != nil {
		event.OnResponse(&CreateAdminResponse{
			User:         admin,
			Organization: org,
			Membership:   membership,
		})
	}

	return nil
}

// resolveOrganization picks the organization a new admin is attached to:
// the caller's active organization when the session has one, otherwise
// the oldest organization the caller created, otherwise the oldest one
// they belong to.
func (h *CreateAdminHandler) resolveOrganization(ctx context.Context, tx bun.Tx, actor Actor) (*Organization, error) {
	if actor.Session != nil && actor.Session.ActiveOrganizationID != nil {
		org, err := h.repo.Organizations().GetByIDTx(ctx, tx, actor.Session.ActiveOrganizationID.String())
		if err == nil {
			return org, nil
		}
		if !repository.IsRecordNotFound(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load active organization")
		}
	}

	org, err := h.repo.Organizations().FirstCreatedByTx(ctx, tx, actor.User.ID)
	if err == nil {
		return org, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve created organizations")
	}

	membership, err := h.repo.Memberships().FirstForUserTx(ctx, tx, actor.User.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrNoOwnerOrganization
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve memberships")
	}

	if membership.Organization == nil {
		return nil, ErrNoOwnerOrganization
	}

	return membership.Organization, nil
}
