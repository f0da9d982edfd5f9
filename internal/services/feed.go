package services

import (
	"context"
	"fmt"
	"math"

	"github.com/Safa-Alshukaili/mini-pro/internal/geo"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/samber/lo"
)

const (
	// FeedLimit caps the feed, explore and nearby listings
	FeedLimit = 50

	DefaultNearbyRadiusKm = 10.0
)

// FeedService answers the post listing queries. Every listing is newest
// first except nearby, which is nearest first.
type FeedService struct {
	posts     repositories.PostRepository
	follows   repositories.FollowRepository
	assembler *Assembler
}

// NewFeedService creates a new FeedService
func NewFeedService(postRepo repositories.PostRepository, followRepo repositories.FollowRepository, assembler *Assembler) *FeedService {
	return &FeedService{
		posts:     postRepo,
		follows:   followRepo,
		assembler: assembler,
	}
}

// Feed returns the latest posts of the user and of everyone they follow
func (s *FeedService) Feed(ctx context.Context, userID uint) ([]models.PostView, error) {
	if userID == 0 {
		return nil, invalid("userId required")
	}
	following, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}
	authors := lo.Uniq(append([]uint{userID}, following...))

	posts, err := s.posts.GetPostsByAuthors(ctx, authors, FeedLimit)
	if err != nil {
		return nil, err
	}
	return s.assembler.Hydrate(ctx, posts)
}

// ProfilePosts returns every post of a single author
func (s *FeedService) ProfilePosts(ctx context.Context, userID uint) ([]models.PostView, error) {
	posts, err := s.posts.GetPostsByAuthors(ctx, []uint{userID}, 0)
	if err != nil {
		return nil, err
	}
	return s.assembler.Hydrate(ctx, posts)
}

// Explore returns the latest posts of everyone
func (s *FeedService) Explore(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.posts.GetAllPosts(ctx, 0, FeedLimit)
	if err != nil {
		return nil, err
	}
	return s.assembler.Hydrate(ctx, posts)
}

// Nearby returns posts located within radiusKm of the point, nearest first.
// Each view carries its distance from the point.
func (s *FeedService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.PostView, error) {
	if !geo.ValidCoordinates(lat, lng) {
		return nil, invalid("Invalid lat/lng")
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return nil, invalid("Invalid radiusKm")
	}

	posts, err := s.posts.GetNearbyPosts(ctx, lat, lng, geo.KmToMeters(radiusKm), FeedLimit)
	if err != nil {
		return nil, err
	}
	views, err := s.assembler.Hydrate(ctx, posts)
	if err != nil {
		return nil, err
	}
	for i := range views {
		loc := views[i].Location
		if loc == nil {
			continue
		}
		d := geo.HaversineKm(lat, lng, loc.Lat(), loc.Lng())
		views[i].DistanceKm = &d
	}
	return views, nil
}
