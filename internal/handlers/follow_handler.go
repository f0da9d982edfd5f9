package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	notifier         *services.Notifier
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notifier *services.Notifier) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		notifier:         notifier,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.POST("/users/:id/unfollow", h.UnfollowUser)
	g.GET("/users/:id/follow-status/:meId", h.GetFollowStatus)
	g.GET("/users/:id/follow-stats", h.GetFollowStats)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser makes the acting user follow :id
func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	var req models.FollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	currentUserID, err := actingUser(c, req.UserID)
	if err != nil {
		return err
	}
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId required")
	}
	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	ctx := c.Request().Context()
	actor, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return httpError(c, err, "follow failed")
	}
	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		return httpError(c, err, "follow failed")
	}

	follow := &models.Follow{
		FollowerID:  currentUserID,
		FollowingID: targetID,
	}
	if err := h.followRepository.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrAlreadyFollowing) {
			return echo.NewHTTPError(http.StatusBadRequest, "Already following this user")
		}
		return httpError(c, err, "follow failed")
	}

	h.notifier.Notify(ctx, models.NotificationFollow, actor, targetID, strconv.FormatUint(uint64(currentUserID), 10), "user")
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// UnfollowUser removes the acting user's follow of :id. Unfollowing someone
// you do not follow succeeds.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	var req models.FollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	currentUserID, err := actingUser(c, req.UserID)
	if err != nil {
		return err
	}
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId required")
	}

	err = h.followRepository.DeleteFollow(c.Request().Context(), currentUserID, targetID)
	if err != nil && !errors.Is(err, repositories.ErrFollowNotFound) {
		return httpError(c, err, "unfollow failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// GetFollowStatus reports whether :meId follows :id
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	targetID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	meID, err := parseUserID(c, "meId")
	if err != nil {
		return err
	}
	isFollowing, err := h.followRepository.IsFollowing(c.Request().Context(), meID, targetID)
	if err != nil {
		return httpError(c, err, "follow status failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"isFollowing": isFollowing})
}

// GetFollowStats returns follower and following counts
func (h *FollowHandler) GetFollowStats(c echo.Context) error {
	userID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	followers, err := h.followRepository.GetFollowersCount(ctx, userID)
	if err != nil {
		return httpError(c, err, "follow stats failed")
	}
	following, err := h.followRepository.GetFollowingCount(ctx, userID)
	if err != nil {
		return httpError(c, err, "follow stats failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"followers": followers, "following": following})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowers(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err, "followers failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"followers": users})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowing(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err, "following failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"following": users})
}
