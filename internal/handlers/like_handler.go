package handlers

import (
	"net/http"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeService *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeService *services.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
}

// LikePost adds the acting user to the post's likes and returns the post
func (h *LikeHandler) LikePost(c echo.Context) error {
	var req models.PostActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		return err
	}

	post, err := h.likeService.Like(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return httpError(c, err, "like failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}
