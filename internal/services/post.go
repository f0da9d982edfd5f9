package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/Safa-Alshukaili/mini-pro/internal/geo"
	"github.com/Safa-Alshukaili/mini-pro/internal/metrics"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
)

const MaxPostTextLength = 2000

// CreatePostInput is everything a new post can be created from. Lat and Lng
// are raw strings; an unparsable or out of range pair drops the location.
type CreatePostInput struct {
	AuthorID        uint
	Text            string
	MediaURL        string
	Lat             string
	Lng             string
	LocationName    string
	LocationDetails string
}

// PostService manages the lifecycle of posts
type PostService struct {
	posts     repositories.PostRepository
	users     repositories.UserRepository
	comments  repositories.CommentRepository
	assembler *Assembler
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, assembler *Assembler) *PostService {
	return &PostService{
		posts:     postRepo,
		users:     userRepo,
		comments:  commentRepo,
		assembler: assembler,
	}
}

// Create stores a canonical post and returns it hydrated
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	if in.AuthorID == 0 {
		return nil, invalid("authorId required")
	}
	text := strings.TrimSpace(in.Text)
	mediaURL := strings.TrimSpace(in.MediaURL)
	if text == "" && mediaURL == "" {
		return nil, invalid("Post must have text or media")
	}
	if utf8.RuneCountInString(text) > MaxPostTextLength {
		return nil, invalid(fmt.Sprintf("Post text must be at most %d characters", MaxPostTextLength))
	}
	if _, err := s.users.GetUserByID(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: in.AuthorID,
		Text:     text,
		MediaURL: mediaURL,
	}
	if lat, lng, ok := geo.ParseCoordinates(in.Lat, in.Lng); ok {
		post.Location = models.NewGeoPoint(lat, lng)
		post.LocationName = strings.TrimSpace(in.LocationName)
		post.LocationDetails = parseLocationDetails(in.LocationDetails)
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	metrics.PostsCreated.Inc()
	return s.assembler.HydrateOne(ctx, post)
}

// Get returns a single hydrated post
func (s *PostService) Get(ctx context.Context, postID string) (*models.PostView, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.assembler.HydrateOne(ctx, post)
}

// UpdateText replaces the text of a canonical post owned by userID
func (s *PostService) UpdateText(ctx context.Context, postID string, userID uint, text string) (*models.PostView, error) {
	if userID == 0 {
		return nil, invalid("userId required")
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrForbidden
	}
	if post.IsRepost() {
		return nil, invalid("Reposts cannot be edited")
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxPostTextLength {
		return nil, invalid(fmt.Sprintf("Post text must be at most %d characters", MaxPostTextLength))
	}
	if text == "" && post.MediaURL == "" {
		return nil, invalid("Post must have text or media")
	}

	updated, err := s.posts.UpdatePostText(ctx, post.ID, text)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.assembler.HydrateOne(ctx, updated)
}

// Delete removes a post owned by userID.
//
// Deleting a canonical post removes its comments; its reposts are left in
// place and hydrate with a nil original. Deleting a repost gives the
// original back one from its repost count.
func (s *PostService) Delete(ctx context.Context, postID string, userID uint) error {
	if userID == 0 {
		return invalid("userId required")
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrForbidden
	}
	return s.deletePost(ctx, post)
}

// DeleteAllByAuthor removes every post of a user, applying the same rules
// as Delete to each of them.
func (s *PostService) DeleteAllByAuthor(ctx context.Context, authorID uint) (int, error) {
	posts, err := s.posts.GetPostsByAuthors(ctx, []uint{authorID}, 0)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for i := range posts {
		err := s.deletePost(ctx, &posts[i])
		if errors.Is(err, repositories.ErrPostNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (s *PostService) deletePost(ctx context.Context, post *models.Post) error {
	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	if post.IsRepost() {
		_, err := s.posts.IncrementRepostsCount(ctx, *post.RepostOf, -1)
		if err != nil && !errors.Is(err, repositories.ErrPostNotFound) {
			return fmt.Errorf("decrement reposts count: %w", err)
		}
		return nil
	}

	if _, err := s.comments.DeleteCommentsByPostID(ctx, post.ID.Hex()); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

// loadPost fetches a post by its hex id. A malformed id is reported as a
// missing post.
func (s *PostService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	return loadPost(ctx, s.posts, postID)
}

func loadPost(ctx context.Context, posts repositories.PostRepository, postID string) (*models.Post, error) {
	id, err := repositories.ParsePostID(postID)
	if err != nil {
		return nil, repositories.ErrPostNotFound
	}
	return posts.GetPostByID(ctx, id)
}

// loadCanonical fetches a post and, when it is a repost, follows it to the
// original that owns likes, comments and reposts.
func loadCanonical(ctx context.Context, posts repositories.PostRepository, postID string) (*models.Post, error) {
	post, err := loadPost(ctx, posts, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsRepost() {
		return post, nil
	}
	return posts.GetPostByID(ctx, *post.RepostOf)
}

func parseLocationDetails(raw string) map[string]interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var details map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		log.Printf("Ignoring unparsable locationDetails: %v", err)
		return nil
	}
	return details
}
