package models

import "time"

// Comment represents a comment on a post. PostID always holds the hex id of
// the canonical post, never a repost shadow.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"postId" gorm:"size:24;index"`
	AuthorID  uint      `json:"authorId" gorm:"index"`
	Text      string    `json:"text" gorm:"size:500"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// CreateCommentRequest defines the request body for creating a new comment.
// Text is checked after trimming, so it carries no validate tag.
type CreateCommentRequest struct {
	UserID uint   `json:"userId"`
	Text   string `json:"text"`
}
