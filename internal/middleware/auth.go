// Package middleware adapts the authorization gate to echo.
package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"blogsphere/internal/auth"
	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/model"
)

// IdentityKey is the echo context key holding the *auth.Identity.
const IdentityKey = "identity"

// Auth holds the gate used by the authentication middlewares.
type Auth struct {
	gate  *auth.Gate
	debug bool
}

// NewAuth creates the middleware set.
func NewAuth(gate *auth.Gate, debug bool) *Auth {
	return &Auth{gate: gate, debug: debug}
}

func (a *Auth) config(optional bool) echojwt.Config {
	return echojwt.Config{
		ContextKey:             IdentityKey,
		TokenLookup:            "header:" + echo.HeaderAuthorization,
		ContinueOnIgnoredError: optional,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return a.gate.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var domainErr *apperrors.Error
			if !errors.As(err, &domainErr) {
				// the extractor found no Authorization header
				domainErr = auth.ErrMissingToken
			}
			if optional && domainErr == auth.ErrMissingToken {
				return nil
			}
			return a.fail(domainErr)
		},
	}
}

// Required rejects requests without a valid bearer token.
func (a *Auth) Required() echo.MiddlewareFunc {
	return echojwt.WithConfig(a.config(false))
}

// Optional resolves the identity when a token is present and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func (a *Auth) Optional() echo.MiddlewareFunc {
	return echojwt.WithConfig(a.config(true))
}

// RequireRoles must run after Required.
func (a *Auth) RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Authorize(IdentityFrom(c), roles...); err != nil {
				return a.fail(err)
			}
			return next(c)
		}
	}
}

func (a *Auth) fail(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err, a.debug)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// IdentityFrom returns the caller's identity, or nil for anonymous requests.
func IdentityFrom(c echo.Context) *auth.Identity {
	identity, _ := c.Get(IdentityKey).(*auth.Identity)
	return identity
}
