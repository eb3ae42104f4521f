package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/minisocial/backend/internal/services"
	"github.com/anonto42/minisocial/backend/internal/uploads"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// toHTTPError maps service and upload errors to their HTTP status and message.
// Anything unknown becomes a 500 with the cause kept as Internal.
func toHTTPError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, services.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
	case errors.Is(err, services.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	case errors.Is(err, uploads.ErrUnsupportedType):
		return echo.NewHTTPError(http.StatusBadRequest, "Only JPEG and PNG images are allowed")
	case errors.Is(err, uploads.ErrTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, "Image is too large")
	case errors.Is(err, uploads.ErrNotFound), errors.Is(err, uploads.ErrInvalidKey):
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}
}

// ErrorHandler renders errors as ErrorResponse and logs server failures.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he, ok := toHTTPError(err).(*echo.HTTPError)
		if !ok {
			he = echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
		}

		body := ErrorResponse{Message: http.StatusText(he.Code)}
		if msg, ok := he.Message.(string); ok {
			body.Message = msg
		}
		if he.Code >= http.StatusInternalServerError {
			body.Message = "Server error"
			if he.Internal != nil {
				body.Error = he.Internal.Error()
			}
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}
