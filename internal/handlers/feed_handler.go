package handlers

import (
	"net/http"

	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed/:userId", h.GetFeed)
	g.GET("/explore", h.GetExplore)
}

// GetFeed returns the latest posts of a user and the people they follow
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := parseUserID(c, "userId")
	if err != nil {
		return err
	}
	posts, err := h.feedService.Feed(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err, "feed failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// GetExplore returns the latest posts of everyone
func (h *FeedHandler) GetExplore(c echo.Context) error {
	posts, err := h.feedService.Explore(c.Request().Context())
	if err != nil {
		return httpError(c, err, "explore failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}
