package handlers

import (
	"net/http"

	"github.com/anonto42/minisocial/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves post listings
type FeedHandler struct {
	postService *services.PostService
}

func NewFeedHandler(postService *services.PostService) *FeedHandler {
	return &FeedHandler{postService: postService}
}

// RegisterFeedRoutes registers the listing routes on the posts group
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/feed", h.GetFeed)
	g.GET("/me", h.GetMyPosts, requireAuth)
	g.GET("/user/:userId", h.GetUserPosts)
}

// GetFeed returns every post, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	posts, err := h.postService.ListFeed(requestContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetMyPosts returns the authenticated user's posts
func (h *FeedHandler) GetMyPosts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	posts, err := h.postService.ListByAuthor(requestContext(c), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetUserPosts returns the posts of the user in the path
func (h *FeedHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.postService.ListByAuthor(requestContext(c), c.Param("userId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}
