package models

import "time"

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationRepost  = "repost"
	NotificationFollow  = "follow"
)

// Notification represents a stored user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // like, comment, repost, follow
	ActorID     uint      `json:"actorId" gorm:"index"`
	RecipientID uint      `json:"recipientId" gorm:"index"`
	TargetID    string    `json:"targetId"`                  // post id or user id
	TargetType  string    `json:"targetType" gorm:"size:20"` // post, user
	Message     string    `json:"message"`
	IsRead      bool      `json:"isRead" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}
