package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_TokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-for-middleware")

	userID := uuid.New()
	token, err := generateToken(userID)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID uuid.UUID
	handler := Middleware(func(c echo.Context) error {
		id, err := GetUserIDFromContext(c)
		require.NoError(t, err)
		gotID = id
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	require.Equal(t, userID, gotID)
}

func TestMiddleware_RejectsMissingAndMalformedHeaders(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-for-middleware")

	e := echo.New()
	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		handler := Middleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		err := handler(c)
		require.Error(t, err)

		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	}
}
