package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/services"
	"github.com/anonto42/minisocial/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	postService *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postService *services.PostService) *CommentHandler {
	return &CommentHandler{postService: postService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/:id/comment", h.CreateComment, requireAuth)
	g.PUT("/:id/comment", h.UpdateComment, requireAuth)
	g.DELETE("/:id/comment", h.DeleteComment, requireAuth)
}

// CreateComment appends a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if _, err := h.postService.AddComment(requestContext(c), c.Param("id"), userID, req.Text); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Comment added"})
}

// UpdateComment edits the text of the caller's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}

	err = h.postService.EditComment(requestContext(c), c.Param("id"), req.CommentID, userID, req.Text)
	if errors.Is(err, services.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, "Unauthorized to edit this comment")
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment updated"})
}

// DeleteComment removes the caller's own comment and returns the updated post
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.DeleteCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}

	post, err := h.postService.RemoveComment(requestContext(c), c.Param("id"), req.CommentID, userID)
	if errors.Is(err, services.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, "Unauthorized to delete this comment")
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}
