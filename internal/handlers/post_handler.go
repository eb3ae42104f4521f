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

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
	uploads     *uploads.Adapter
	logger      *slog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService, uploader *uploads.Adapter, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		uploads:     uploader,
		logger:      logger,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("", h.CreatePost, requireAuth)
	g.GET("/:id", h.GetPost)
}

// CreatePost creates a new post, optionally with an image
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}

	image, err := h.uploads.FromRequest(c, "image")
	if err != nil {
		return toHTTPError(err)
	}

	post, err := h.postService.CreatePost(requestContext(c), userID, req.Content, image)
	if err != nil {
		discardUpload(c, h.uploads, h.logger, image)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postService.GetPost(requestContext(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}
