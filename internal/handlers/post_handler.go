package handlers

import (
	"net/http"
	"strconv"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService   *services.PostService
	repostService *services.RepostService
	feedService   *services.FeedService
	uploadDir     string
}

// NewPostHandler creates a new PostHandler. Media files are stored under
// uploadDir; an empty uploadDir disables file uploads.
func NewPostHandler(postService *services.PostService, repostService *services.RepostService, feedService *services.FeedService, uploadDir string) *PostHandler {
	return &PostHandler{
		postService:   postService,
		repostService: repostService,
		feedService:   feedService,
		uploadDir:     uploadDir,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/nearby", h.GetNearbyPosts)
	g.GET("/posts/by-user/:id", h.GetPostsByUser)
	g.GET("/posts/:id", h.GetPost)
	g.PATCH("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/repost", h.Repost)
}

// CreatePost creates a new post from a JSON body or a multipart form with
// an optional "media" file.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	authorID, err := actingUser(c, req.AuthorID)
	if err != nil {
		return err
	}

	mediaURL, err := saveUpload(c, "media", h.uploadDir, "")
	if err != nil {
		return httpError(c, err, "create failed")
	}
	if mediaURL == "" {
		mediaURL = req.MediaURL
	}

	post, err := h.postService.Create(c.Request().Context(), services.CreatePostInput{
		AuthorID:        authorID,
		Text:            req.Text,
		MediaURL:        mediaURL,
		Lat:             string(req.Lat),
		Lng:             string(req.Lng),
		LocationName:    req.LocationName,
		LocationDetails: string(req.LocationDetails),
	})
	if err != nil {
		return httpError(c, err, "create failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err, "post fetch failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

// UpdatePost replaces the text of a post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		return err
	}

	post, err := h.postService.UpdateText(c.Request().Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		return httpError(c, err, "update post failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	var req models.PostActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		return err
	}

	if err := h.postService.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(c, err, "delete post failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Repost reposts a post into the acting user's stream
func (h *PostHandler) Repost(c echo.Context) error {
	var req models.PostActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		return err
	}

	result, err := h.repostService.Repost(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return httpError(c, err, "repost failed")
	}
	return c.JSON(http.StatusOK, result)
}

// GetPostsByUser returns every post of a user, newest first
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	userID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	posts, err := h.feedService.ProfilePosts(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err, "by-user failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// GetNearbyPosts returns posts around ?lat&lng within ?radiusKm (10 by default)
func (h *PostHandler) GetNearbyPosts(c echo.Context) error {
	lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if latErr != nil || lngErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid lat/lng")
	}
	radiusKm := services.DefaultNearbyRadiusKm
	if raw := c.QueryParam("radiusKm"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid radiusKm")
		}
		radiusKm = r
	}

	posts, err := h.feedService.Nearby(c.Request().Context(), lat, lng, radiusKm)
	if err != nil {
		return httpError(c, err, "nearby failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}
