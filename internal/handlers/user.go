package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/services"
	"github.com/anonto42/minisocial/backend/internal/uploads"
	"github.com/anonto42/minisocial/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the user directory and the caller's own profile
type UserHandler struct {
	userService *services.UserService
	uploads     *uploads.Adapter
	logger      *slog.Logger
}

func NewUserHandler(userService *services.UserService, uploader *uploads.Adapter, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, uploads: uploader, logger: logger}
}

// RegisterUserRoutes registers the /users routes. requireAuth guards every
// route except the public profile lookup.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/me", h.GetMe, requireAuth)
	g.PUT("/profile", h.UpdateProfile, requireAuth)
	g.GET("", h.ListUsers, requireAuth)
	g.GET("/:id", h.GetUser)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetProfile(requestContext(c), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser returns any user's public profile
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.GetProfile(requestContext(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile changes name, bio and profile image. Omitted fields keep
// their value.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}

	image, err := h.uploads.FromRequest(c, "profileImage")
	if err == nil && image == "" {
		// older clients send the file as "image"
		image, err = h.uploads.FromRequest(c, "image")
	}
	if err != nil {
		return toHTTPError(err)
	}

	user, err := h.userService.UpdateProfile(requestContext(c), userID, services.ProfileUpdate{
		Name:         req.Name,
		Bio:          req.Bio,
		ProfileImage: image,
	})
	if err != nil {
		discardUpload(c, h.uploads, h.logger, image)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers returns all users ordered by name
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(requestContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}
