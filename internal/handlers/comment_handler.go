package handlers

import (
	"net/http"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		return err
	}

	comment, err := h.commentService.AddComment(c.Request().Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		return httpError(c, err, "comment failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"comment": comment})
}
