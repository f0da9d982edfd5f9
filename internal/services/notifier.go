package services

import (
	"context"
	"log"
	"strings"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
)

// Notifier records notifications for post owners. Failures are logged and
// never fail the request that triggered them.
type Notifier struct {
	notifications repositories.NotificationRepository
}

// NewNotifier creates a new Notifier
func NewNotifier(notificationRepo repositories.NotificationRepository) *Notifier {
	return &Notifier{notifications: notificationRepo}
}

// Notify stores a notification of kind from actor to recipient. Acting on
// your own content does not notify.
func (n *Notifier) Notify(ctx context.Context, kind string, actor *models.User, recipientID uint, targetID, targetType string) {
	if n == nil || n.notifications == nil || actor == nil || actor.ID == recipientID {
		return
	}
	notif := &models.Notification{
		Type:        kind,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    targetID,
		TargetType:  targetType,
		Message:     notificationMessage(kind, actor),
	}
	if err := n.notifications.CreateNotification(ctx, notif); err != nil {
		log.Printf("Failed to store %s notification for user %d: %v", kind, recipientID, err)
	}
}

func notificationMessage(kind string, actor *models.User) string {
	name := strings.TrimSpace(actor.FirstName + " " + actor.LastName)
	if name == "" {
		name = "Someone"
	}
	switch kind {
	case models.NotificationLike:
		return name + " liked your post"
	case models.NotificationComment:
		return name + " commented on your post"
	case models.NotificationRepost:
		return name + " reposted your post"
	case models.NotificationFollow:
		return name + " started following you"
	}
	return name + " interacted with you"
}
