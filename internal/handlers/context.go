package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/minisocial/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the id stored by JWTAuthMiddleware.
func getUserIDFromContext(c echo.Context) (string, error) {
	userID, ok := c.Get(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
	}
	return userID, nil
}

// requestContext detaches store calls from client disconnects so a mutation
// that has started runs to completion.
func requestContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}
