package handlers

import (
	"net/http"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/services"
	"github.com/anonto42/minisocial/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	if h.authService.FirebaseEnabled() {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// Register creates a local account and returns a token for it
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}

	resp, err := h.authService.Register(requestContext(c), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login checks email and password and returns a token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}

	resp, err := h.authService.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// FirebaseLogin exchanges a Firebase ID token for a local token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}

	resp, err := h.authService.FirebaseLogin(requestContext(c), req.IDToken)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
