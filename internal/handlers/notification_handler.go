package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/users/:id/notifications", h.GetNotifications)
	g.GET("/users/:id/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/users/:id/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.AuthorSummary `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) ([]EnrichedNotification, error) {
	actorIDs := lo.Uniq(lo.Map(notifications, func(n models.Notification, _ int) uint { return n.ActorID }))
	users, err := h.userRepository.GetUsersByIDs(c.Request().Context(), actorIDs)
	if err != nil {
		return nil, err
	}
	actors := lo.Associate(users, func(u models.User) (uint, models.AuthorSummary) {
		return u.ID, u.ToSummary()
	})

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := actors[n.ActorID]; ok {
			enriched[i].Actor = &actor
		}
	}
	return enriched, nil
}

// GetNotifications returns paginated notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelf(c, userID); err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	notifications, total, err := h.notificationRepository.GetByRecipientID(c.Request().Context(), userID, page, limit)
	if err != nil {
		return httpError(c, err, "notifications failed")
	}
	enriched, err := h.enrichNotifications(c, notifications)
	if err != nil {
		return httpError(c, err, "notifications failed")
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": enriched,
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelf(c, userID); err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err, "unread count failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelf(c, userID); err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), userID); err != nil {
		return httpError(c, err, "mark read failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
