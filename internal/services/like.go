package services

import (
	"context"
	"fmt"

	"github.com/Safa-Alshukaili/mini-pro/internal/metrics"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
)

// LikeService records likes on posts
type LikeService struct {
	posts     repositories.PostRepository
	users     repositories.UserRepository
	assembler *Assembler
	notifier  *Notifier
}

// NewLikeService creates a new LikeService
func NewLikeService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, assembler *Assembler, notifier *Notifier) *LikeService {
	return &LikeService{
		posts:     postRepo,
		users:     userRepo,
		assembler: assembler,
		notifier:  notifier,
	}
}

// Like adds userID to the like set of the post, or of its original when the
// post is a repost. Liking twice is a no-op.
func (s *LikeService) Like(ctx context.Context, postID string, userID uint) (*models.PostView, error) {
	if userID == 0 {
		return nil, invalid("userId required")
	}
	post, err := loadCanonical(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	alreadyLiked := post.HasLike(userID)
	updated, err := s.posts.AddLike(ctx, post.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("add like: %w", err)
	}

	if alreadyLiked {
		metrics.Likes.WithLabelValues("unchanged").Inc()
	} else {
		metrics.Likes.WithLabelValues("added").Inc()
		s.notifier.Notify(ctx, models.NotificationLike, user, updated.AuthorID, updated.ID.Hex(), "post")
	}
	return s.assembler.HydrateOne(ctx, updated)
}
