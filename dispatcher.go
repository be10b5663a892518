package auth

import (
	"context"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Redirect is a control-flow signal, not a failure. Dispatched actions
// return it when the caller should be sent elsewhere; error shaping
// passes it through untouched.
type Redirect struct {
	Location string
	Status   int
}

func (r Redirect) Error() string {
	return "redirect to " + r.Location
}

// NewRedirect builds a redirect signal with a 303 default.
func NewRedirect(location string, status ...int) Redirect {
	code := http.StatusSeeOther
	if len(status) > 0 && status[0] > 0 {
		code = status[0]
	}
	return Redirect{Location: location, Status: code}
}

// IsRedirect reports whether the error is a redirect signal.
func IsRedirect(err error) (Redirect, bool) {
	var r Redirect
	if err == nil {
		return r, false
	}
	ok := errors.As(err, &r)
	return r, ok
}

// errInternalMasked is what callers see when an action fails for a
// reason they have no business knowing about.
var errInternalMasked = goerrors.New("Internal Server Error", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal)

// SignInPayload carries sign in form fields.
type SignInPayload struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ExtendedSession bool   `json:"extended_session" form:"extended_session"`
}

func (p SignInPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// SignUpPayload carries registration form fields.
type SignUpPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password" form:"password"`
}

func (p SignUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(10, 100)),
	)
}

// PasswordResetRequestPayload asks for a reset link.
type PasswordResetRequestPayload struct {
	Email string `json:"email" form:"email"`
}

func (p PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// PasswordResetPerformPayload completes a reset with a mailed token.
type PasswordResetPerformPayload struct {
	Token           string `json:"token" form:"token"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}

func (p PasswordResetPerformPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required, is.UUID),
		validation.Field(&p.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&p.PasswordConfirm,
			validation.Required,
			validation.By(ValidateStringEquals(p.Password)),
		),
	)
}

// ChangePasswordPayload rotates the caller's own password.
type ChangePasswordPayload struct {
	CurrentPassword     string `json:"current_password" form:"current_password"`
	NewPassword         string `json:"new_password" form:"new_password"`
	RevokeOtherSessions bool   `json:"revoke_other_sessions" form:"revoke_other_sessions"`
}

func (p ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(10, 100)),
	)
}

// CreateOrganizationPayload provisions a tenant.
type CreateOrganizationPayload struct {
	Name string `json:"name" form:"name"`
	Slug string `json:"slug" form:"slug"`
	Logo string `json:"logo" form:"logo"`
}

func (p CreateOrganizationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Slug, validation.Required, validation.Match(slugPattern)),
	)
}

// CreateAdminPayload provisions an organization admin.
type CreateAdminPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password" form:"password"`
}

func (p CreateAdminPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(10, 100)),
	)
}

// Dispatcher is the single entry point for every auth action. It
// resolves credentials through the guard, validates payloads, invokes
// the matching handler, and shapes every outcome the same way.
type Dispatcher struct {
	guard    *Guard
	sessions SessionStore

	signIn        *SignInHandler
	signOut       *SignOutHandler
	register      *RegisterUserHandler
	changePwd     *ChangePasswordHandler
	resetInit     *InitializePasswordResetHandler
	resetFinalize *FinalizePasswordResetHandler
	createOrg     *CreateOrganizationHandler
	createAdmin   *CreateAdminHandler

	logger Logger

	signInRoute    string
	dashboardRoute string
	userHomeRoute  string
}

// NewDispatcher wires every handler against one repository manager and
// one session store.
func NewDispatcher(repo RepositoryManager, sessions SessionStore, guard *Guard, mailer Mailer) *Dispatcher {
	return &Dispatcher{
		guard:          guard,
		sessions:       sessions,
		signIn:         NewSignInHandler(repo, sessions),
		signOut:        NewSignOutHandler(sessions),
		register:       NewRegisterUserHandler(repo),
		changePwd:      NewChangePasswordHandler(repo),
		resetInit:      NewInitializePasswordResetHandler(repo, mailer),
		resetFinalize:  NewFinalizePasswordResetHandler(repo),
		createOrg:      NewCreateOrganizationHandler(repo),
		createAdmin:    NewCreateAdminHandler(repo),
		logger:         defLogger{},
		signInRoute:    "/sign-in",
		dashboardRoute: "/dashboard",
		userHomeRoute:  "/user",
	}
}

func (d *Dispatcher) WithLogger(logger Logger) *Dispatcher {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// WithActivitySink propagates the sink to every handler.
func (d *Dispatcher) WithActivitySink(sink ActivitySink) *Dispatcher {
	d.signIn.WithActivitySink(sink)
	d.signOut.WithActivitySink(sink)
	d.register.WithActivitySink(sink)
	d.changePwd.WithActivitySink(sink)
	d.resetInit.WithActivitySink(sink)
	d.resetFinalize.WithActivitySink(sink)
	d.createOrg.WithActivitySink(sink)
	d.createAdmin.WithActivitySink(sink)
	return d
}

// WithRoutes overrides the redirect targets used by route access checks.
func (d *Dispatcher) WithRoutes(signIn, dashboard, userHome string) *Dispatcher {
	if signIn != "" {
		d.signInRoute = signIn
	}
	if dashboard != "" {
		d.dashboardRoute = dashboard
	}
	if userHome != "" {
		d.userHomeRoute = userHome
	}
	return d
}

// ResetHandler exposes the initialize handler for TTL/mailer tuning.
func (d *Dispatcher) ResetHandler() *InitializePasswordResetHandler {
	return d.resetInit
}

// SignIn authenticates credentials and opens a session.
func (d *Dispatcher) SignIn(ctx context.Context, payload SignInPayload) (*SignInResponse, error) {
	if err := payload.Validate(); err != nil {
		return nil, d.shape(validationError(err))
	}

	var resp *SignInResponse
	err := d.signIn.Execute(ctx, SignInMessage{
		Email:           payload.Email,
		Password:        payload.Password,
		ExtendedSession: payload.ExtendedSession,
		OnResponse:      func(r *SignInResponse) { resp = r },
	})
	if err != nil {
		return nil, d.shape(err)
	}

	return resp, nil
}

// SignUp registers a new account.
func (d *Dispatcher) SignUp(ctx context.Context, payload SignUpPayload) (*RegisterUserResponse, error) {
	if err := payload.Validate(); err != nil {
		return nil, d.shape(validationError(err))
	}

	var resp *RegisterUserResponse
	err := d.register.Execute(ctx, RegisterUserMessage{
		Name:       payload.Name,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Password:   payload.Password,
		OnResponse: func(r *RegisterUserResponse) { resp = r },
	})
	if err != nil {
		return nil, d.shape(err)
	}

	return resp, nil
}

// SignOut revokes the caller's session and redirects to sign in.
func (d *Dispatcher) SignOut(ctx context.Context, req RequestContext) error {
	actor := d.guard.Resolve(ctx, req)

	if err := d.signOut.Execute(ctx, SignOutMessage{Actor: actor}); err != nil {
		return d.shape(err)
	}

	return NewRedirect(d.signInRoute)
}

// RequestPasswordReset starts the recovery flow. The response is the
// same whether or not the email maps to an account.
func (d *Dispatcher) RequestPasswordReset(ctx context.Context, payload PasswordResetRequestPayload) (*InitializePasswordResetResponse, error) {
	if err := payload.Validate(); err != nil {
		return nil, d.shape(validationError(err))
	}

	var resp *InitializePasswordResetResponse
	err := d.resetInit.Execute(ctx, InitializePasswordResetMessage{
		Email:      payload.Email,
		OnResponse: func(r *InitializePasswordResetResponse) { resp = r },
	})
	if err != nil {
		return nil, d.shape(err)
	}

	return resp, nil
}

// PerformPasswordReset consumes a token and sets the new password.
func (d *Dispatcher) PerformPasswordReset(ctx context.Context, payload PasswordResetPerformPayload) error {
	if err := payload.Validate(); err != nil {
		return d.shape(validationError(err))
	}

	err := d.resetFinalize.Execute(ctx, FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	})
	return d.shape(err)
}

// ChangePassword rotates the password of the signed-in caller.
func (d *Dispatcher) ChangePassword(ctx context.Context, req RequestContext, payload ChangePasswordPayload) error {
	actor, err := d.guard.RequireAuthenticated(ctx, req)
	if err != nil {
		return d.shape(err)
	}

	if err := payload.Validate(); err != nil {
		return d.shape(validationError(err))
	}

	return d.shape(d.changePwd.Execute(ctx, ChangePasswordMessage{
		Actor:               actor,
		CurrentPassword:     payload.CurrentPassword,
		NewPassword:         payload.NewPassword,
		RevokeOtherSessions: payload.RevokeOtherSessions,
	}))
}

// CreateOrganization provisions a tenant. Owner only.
func (d *Dispatcher) CreateOrganization(ctx context.Context, req RequestContext, payload CreateOrganizationPayload) (*CreateOrganizationResponse, error) {
	actor, err := d.guard.RequireOwner(ctx, req)
	if err != nil {
		return nil, d.shape(err)
	}

	if err := payload.Validate(); err != nil {
		return nil, d.shape(validationError(err))
	}

	var resp *CreateOrganizationResponse
	err = d.createOrg.Execute(ctx, CreateOrganizationMessage{
		Actor:      actor,
		Name:       payload.Name,
		Slug:       payload.Slug,
		Logo:       payload.Logo,
		OnResponse: func(r *CreateOrganizationResponse) { resp = r },
	})
	if err != nil {
		return nil, d.shape(err)
	}

	return resp, nil
}

// CreateAdmin provisions an organization admin. Owner only.
func (d *Dispatcher) CreateAdmin(ctx context.Context, req RequestContext, payload CreateAdminPayload) (*CreateAdminResponse, error) {
	actor, err := d.guard.RequireOwner(ctx, req)
	if err != nil {
		return nil, d.shape(err)
	}

	if err := payload.Validate(); err != nil {
		return nil, d.shape(validationError(err))
	}

	var resp *CreateAdminResponse
	err = d.createAdmin.Execute(ctx, CreateAdminMessage{
		Actor:      actor,
		Name:       payload.Name,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Password:   payload.Password,
		OnResponse: func(r *CreateAdminResponse) { resp = r },
	})
	if err != nil {
		return nil, d.shape(err)
	}

	return resp, nil
}

// CheckRouteAccess enforces the tier a route requires and answers with
// the actor on allow or a redirect signal on deny. Anonymous callers go
// to sign in; signed-in callers short of the requirement go to the area
// their tier can use.
func (d *Dispatcher) CheckRouteAccess(ctx context.Context, req RequestContext, required Tier) (Actor, error) {
	actor := d.guard.Resolve(ctx, req)

	if actor.Tier == TierAnonymous {
		return Actor{}, NewRedirect(d.signInRoute)
	}

	if actor.Tier.Satisfies(required) {
		return actor, nil
	}

	if required == TierOwner && actor.Tier >= TierOrgAdmin {
		return Actor{}, NewRedirect(d.dashboardRoute)
	}

	return Actor{}, NewRedirect(d.userHomeRoute)
}

func validationError(err error) error {
	fields := map[string]any{}
	for field, msg := range FormatValidationErrorToMap(err) {
		fields[field] = msg
	}

	return goerrors.New("payload validation failed", goerrors.CategoryValidation).
		WithTextCode("PAYLOAD_VALIDATION").
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(fields)
}

// shape is the uniform error contract. Redirect signals pass through,
// caller-caused categories surface as-is with their 4xx codes, and
// everything else is logged in full then masked.
func (d *Dispatcher) shape(err error) error {
	if err == nil {
		return nil
	}

	if redirect, ok := IsRedirect(err); ok {
		return redirect
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryAuth,
			goerrors.CategoryAuthz,
			goerrors.CategoryValidation,
			goerrors.CategoryBadInput,
			goerrors.CategoryConflict,
			goerrors.CategoryRateLimit:
			return richErr
		}

		d.logger.Error(
			"action failed: %s category=%s details=%s",
			richErr.Message,
			richErr.Category,
			print.MaybePrettyJSON(richErr.Metadata),
		)
		return errInternalMasked
	}

	d.logger.Error("action failed: %v", err)
	return errInternalMasked
}
