package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPAdapter translates between the HTTP layer and dispatched actions:
// it extracts credentials from the request, applies redirect signals,
// and owns the session cookie.
type HTTPAdapter struct {
	dispatcher       *Dispatcher
	cfg              Config
	cookieDuration   time.Duration
	extendedDuration time.Duration
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

func NewHTTPAdapter(dispatcher *Dispatcher, cfg Config) (*HTTPAdapter, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetSessionDuration() > 0 {
		cookieDuration = time.Duration(cfg.GetSessionDuration()) * time.Hour
	}

	extendedDuration := cookieDuration
	if cfg.GetExtendedSessionDuration() > 0 {
		extendedDuration = time.Duration(cfg.GetExtendedSessionDuration()) * time.Hour
	}

	a := &HTTPAdapter{
		dispatcher:       dispatcher,
		cfg:              cfg,
		cookieDuration:   cookieDuration,
		extendedDuration: extendedDuration,
		Logger:           defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a HTTPAdapter) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a HTTPAdapter) GetExtendedCookieDuration() time.Duration {
	return a.extendedDuration
}

// Credentials pulls the session token from the request cookie.
func (a *HTTPAdapter) Credentials(ctx router.Context) RequestContext {
	return RequestContext{
		Credentials: ctx.Cookies(a.cfg.GetContextKey()),
	}
}

// SignIn dispatches the action and, on success, installs the session
// cookie.
func (a *HTTPAdapter) SignIn(ctx router.Context, payload SignInPayload) (*SignInResponse, error) {
	resp, err := a.dispatcher.SignIn(ctx.Context(), payload)
	if err != nil {
		a.Logger.Error("Sign in error: %s", err)
		return nil, err
	}

	duration := a.cookieDuration
	if payload.ExtendedSession {
		duration = a.extendedDuration
	}

	a.setCookieToken(ctx, resp.Token, duration)
	return resp, nil
}

// SignOut dispatches the action, clears the cookie, and applies the
// resulting redirect.
func (a *HTTPAdapter) SignOut(ctx router.Context) error {
	err := a.dispatcher.SignOut(ctx.Context(), a.Credentials(ctx))

	a.cookieDel(ctx, a.cfg.GetContextKey())

	if redirect, ok := IsRedirect(err); ok {
		return a.ApplyRedirect(ctx, redirect)
	}
	return err
}

// CheckRouteAccess guards a page render: redirect signals become HTTP
// redirects, anything else is handed to the caller with the actor.
func (a *HTTPAdapter) CheckRouteAccess(ctx router.Context, required Tier) (Actor, bool, error) {
	actor, err := a.dispatcher.CheckRouteAccess(ctx.Context(), a.Credentials(ctx), required)
	if err != nil {
		if redirect, ok := IsRedirect(err); ok {
			a.SetRedirect(ctx)
			return Actor{}, false, a.ApplyRedirect(ctx, redirect)
		}
		return Actor{}, false, err
	}
	return actor, true, nil
}

// ApplyRedirect turns a redirect signal into an HTTP redirect, using
// 302 for GET and the signal's status otherwise.
func (a *HTTPAdapter) ApplyRedirect(ctx router.Context, redirect Redirect) error {
	statusCode := redirect.Status
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return ctx.Redirect(redirect.Location, statusCode)
}

func (a *HTTPAdapter) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		return def[0]
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *HTTPAdapter) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

// SetRedirect remembers the rejected route so the caller lands back on
// it after signing in.
func (a *HTTPAdapter) SetRedirect(ctx router.Context) {
	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", ctx.OriginalURL())

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *HTTPAdapter) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *HTTPAdapter) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *HTTPAdapter) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "An unexpected authentication error").
			WithCode(goerrors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to sign in",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(a.cfg.GetSignInRoute(), statusCode)
}

func (a *HTTPAdapter) defaultErrHandler(c router.Context, err error) error {
	if redirect, ok := IsRedirect(err); ok {
		return a.ApplyRedirect(c, redirect)
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	a.Logger.Info(
		"HTTP error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		code := richErr.Code
		if code == 0 {
			code = fiber.StatusInternalServerError
		}
		return c.JSON(code, map[string]any{
			"error": richErr,
		})
	}
}
