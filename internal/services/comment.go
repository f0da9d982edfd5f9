package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/Safa-Alshukaili/mini-pro/internal/metrics"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
)

const MaxCommentLength = 500

// CommentService handles comments on posts
type CommentService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	comments repositories.CommentRepository
	notifier *Notifier
}

// NewCommentService creates a new CommentService
func NewCommentService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, notifier *Notifier) *CommentService {
	return &CommentService{
		posts:    postRepo,
		users:    userRepo,
		comments: commentRepo,
		notifier: notifier,
	}
}

// AddComment stores a comment on the post, or on its original when the post
// is a repost, and bumps the comment count of that post.
func (s *CommentService) AddComment(ctx context.Context, postID string, userID uint, text string) (*models.CommentView, error) {
	if userID == 0 {
		return nil, invalid("userId required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("Comment text required")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, invalid(fmt.Sprintf("Comment must be at most %d characters", MaxCommentLength))
	}

	post, err := loadCanonical(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   post.ID.Hex(),
		AuthorID: userID,
		Text:     text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if err := s.posts.IncrementCommentsCount(ctx, post.ID); err != nil {
		// the count and the rows must agree, so drop the row again
		if delErr := s.comments.DeleteComment(ctx, comment.ID); delErr != nil {
			log.Printf("Failed to roll back comment %d on post %s: %v", comment.ID, post.ID.Hex(), delErr)
		}
		return nil, fmt.Errorf("increment comments count: %w", err)
	}
	metrics.CommentsCreated.Inc()
	s.notifier.Notify(ctx, models.NotificationComment, user, post.AuthorID, post.ID.Hex(), "post")

	author := user.ToSummary()
	return &models.CommentView{Comment: *comment, Author: &author}, nil
}
