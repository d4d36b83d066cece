package middleware

import (
	"storefront-api/internal/apperror"
	"storefront-api/internal/model"
	"storefront-api/internal/token"
	"strings"

	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Authenticate reads an optional Bearer token. A missing token leaves the
// request anonymous; a bad one is rejected.
func Authenticate(tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return apperror.New(apperror.ErrUnauthorized, "malformed authorization header")
			}
			principal, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				return apperror.Wrap(apperror.ErrUnauthorized, err, "invalid or expired token")
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := PrincipalFrom(c); !ok {
				return apperror.New(apperror.ErrUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return apperror.New(apperror.ErrUnauthorized, "authentication required")
			}
			if !principal.IsAdmin() {
				return apperror.New(apperror.ErrForbidden, "admin access required")
			}
			return next(c)
		}
	}
}

func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	principal, ok := c.Get(principalKey).(model.Principal)
	return principal, ok
}

// OwnerFrom resolves the cart owner: the authenticated user if there is
// one, otherwise the anonymous session.
func OwnerFrom(c echo.Context) model.Owner {
	if principal, ok := PrincipalFrom(c); ok {
		return model.UserOwner(principal.UserID)
	}
	return model.SessionOwner(SessionID(c))
}
