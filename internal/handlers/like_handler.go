package handlers

import (
	"net/http"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeResponse is returned by the like toggle
type LikeResponse struct {
	Message string           `json:"message"`
	Post    *models.PostView `json:"post"`
	IsLiked bool             `json:"isLiked"`
}

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	postService *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postService *services.PostService) *LikeHandler {
	return &LikeHandler{postService: postService}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.PATCH("/:id/like", h.ToggleLike, requireAuth)
}

// ToggleLike likes the post, or unlikes it if the caller already did
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	liked, post, err := h.postService.ToggleLike(requestContext(c), c.Param("id"), userID)
	if err != nil {
		return toHTTPError(err)
	}

	msg := "Post unliked"
	if liked {
		msg = "Post liked"
	}
	return c.JSON(http.StatusOK, LikeResponse{Message: msg, Post: post, IsLiked: liked})
}
