package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Safa-Alshukaili/mini-pro/internal/metrics"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
)

// RepostService handles reposts and keeps the reposts count of originals
type RepostService struct {
	posts     repositories.PostRepository
	users     repositories.UserRepository
	assembler *Assembler
	notifier  *Notifier
}

// NewRepostService creates a new RepostService
func NewRepostService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, assembler *Assembler, notifier *Notifier) *RepostService {
	return &RepostService{
		posts:     postRepo,
		users:     userRepo,
		assembler: assembler,
		notifier:  notifier,
	}
}

// Repost creates userID's repost of the post. Reposting a repost targets its
// original. A user reposts a given original at most once; a repeated request
// reports AlreadyReposted and changes nothing.
func (s *RepostService) Repost(ctx context.Context, postID string, userID uint) (*models.RepostResult, error) {
	if userID == 0 {
		return nil, invalid("userId required")
	}
	original, err := loadCanonical(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.posts.FindRepost(ctx, userID, original.ID)
	if err != nil {
		return nil, fmt.Errorf("find repost: %w", err)
	}
	if existing != nil {
		return s.alreadyReposted(ctx, original)
	}

	repostOf := original.ID
	shadow := &models.Post{
		AuthorID: userID,
		RepostOf: &repostOf,
	}
	if err := s.posts.CreatePost(ctx, shadow); err != nil {
		if errors.Is(err, repositories.ErrDuplicateRepost) {
			// lost a race with a concurrent repost by the same user
			return s.alreadyReposted(ctx, original)
		}
		return nil, fmt.Errorf("create repost: %w", err)
	}

	updated, err := s.posts.IncrementRepostsCount(ctx, original.ID, 1)
	if err != nil {
		// a shadow without its count would turn every retry into alreadyReposted
		if delErr := s.posts.DeletePost(ctx, shadow.ID); delErr != nil {
			log.Printf("Failed to roll back repost %s of %s: %v", shadow.ID.Hex(), original.ID.Hex(), delErr)
		}
		return nil, fmt.Errorf("increment reposts count: %w", err)
	}
	metrics.Reposts.WithLabelValues("created").Inc()
	s.notifier.Notify(ctx, models.NotificationRepost, user, updated.AuthorID, updated.ID.Hex(), "post")

	views, err := s.assembler.Hydrate(ctx, []models.Post{*shadow, *updated})
	if err != nil {
		return nil, err
	}
	return &models.RepostResult{
		Repost:   &views[0],
		Original: &views[1],
	}, nil
}

func (s *RepostService) alreadyReposted(ctx context.Context, original *models.Post) (*models.RepostResult, error) {
	metrics.Reposts.WithLabelValues("duplicate").Inc()
	view, err := s.assembler.HydrateOne(ctx, original)
	if err != nil {
		return nil, err
	}
	return &models.RepostResult{
		Original:        view,
		AlreadyReposted: true,
	}, nil
}
