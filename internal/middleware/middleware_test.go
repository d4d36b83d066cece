package middleware

import (
	"net/http"
	"net/http/httptest"
	"storefront-api/internal/apperror"
	"storefront-api/internal/model"
	"storefront-api/internal/token"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, req *http.Request, mws []echo.MiddlewareFunc, h echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return rec, h(c)
}

func TestSessionAssignsCookie(t *testing.T) {
	var seen string
	rec, err := run(t, httptest.NewRequest(http.MethodGet, "/", nil),
		[]echo.MiddlewareFunc{Session(SessionConfig{CookieName: "sid", TTL: time.Hour})},
		func(c echo.Context) error {
			seen = SessionID(c)
			return nil
		})
	require.NoError(t, err)
	require.NotEmpty(t, seen)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionKeepsValidCookie(t *testing.T) {
	const id = "0b7c2f4e-8d36-4a53-9f43-2f1f8c6b6a11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id})

	var seen string
	rec, err := run(t, req,
		[]echo.MiddlewareFunc{Session(SessionConfig{CookieName: "sid", TTL: time.Hour})},
		func(c echo.Context) error {
			seen = SessionID(c)
			assert.Equal(t, model.SessionOwner(id), OwnerFrom(c))
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, id, seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthenticateAndRequireAdmin(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	customer, err := tokens.Issue(&model.User{ID: 4, Role: model.RoleCustomer})
	require.NoError(t, err)
	admin, err := tokens.Issue(&model.User{ID: 5, Role: model.RoleAdmin})
	require.NoError(t, err)

	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	chain := []echo.MiddlewareFunc{Authenticate(tokens), RequireAdmin()}

	_, err = run(t, httptest.NewRequest(http.MethodGet, "/", nil), chain, ok)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+customer)
	_, err = run(t, req, chain, ok)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+admin)
	rec, err := run(t, req, chain, ok)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	_, err = run(t, req, chain, ok)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestOwnerPrefersUser(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	raw, err := tokens.Issue(&model.User{ID: 9, Role: model.RoleCustomer})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
	_, err = run(t, req,
		[]echo.MiddlewareFunc{Session(SessionConfig{CookieName: "sid", TTL: time.Hour}), Authenticate(tokens)},
		func(c echo.Context) error {
			assert.Equal(t, model.UserOwner(9), OwnerFrom(c))
			return nil
		})
	require.NoError(t, err)
}
