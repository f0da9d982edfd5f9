// Package repotest provides in-memory implementations of the repository
// interfaces for tests. They share one Store so that cross-repository reads
// (followers, comment authors) see the same data.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Safa-Alshukaili/mini-pro/internal/geo"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Calls counts bulk reads so tests can assert how many queries a read path
// issued.
type Calls struct {
	GetPostsByIDs        int
	GetUsersByIDs        int
	GetCommentsByPostIDs int
}

type Store struct {
	mu sync.Mutex

	clock int64
	seq   uint

	posts         map[primitive.ObjectID]*models.Post
	users         map[uint]*models.User
	comments      []models.Comment
	follows       []models.Follow
	notifications []models.Notification

	Calls Calls

	// SkipRepostLookup makes FindRepost always miss, as if a concurrent
	// request inserted the repost after the lookup.
	SkipRepostLookup bool
}

func NewStore() *Store {
	return &Store{
		posts: map[primitive.ObjectID]*models.Post{},
		users: map[uint]*models.User{},
	}
}

func (s *Store) Posts() *PostRepo                 { return &PostRepo{s} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{s} }
func (s *Store) Comments() *CommentRepo           { return &CommentRepo{s} }
func (s *Store) Follows() *FollowRepo             { return &FollowRepo{s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s} }

// now returns strictly increasing timestamps so ordering is deterministic
func (s *Store) now() time.Time {
	s.clock++
	return epoch.Add(time.Duration(s.clock) * time.Second)
}

func (s *Store) nextID() uint {
	s.seq++
	return s.seq
}

// AddUser stores a user with a fresh id and returns it
func (s *Store) AddUser(first, last, email string) *models.User {
	u := &models.User{FirstName: first, LastName: last, Email: email, Preferences: models.DefaultPreferences()}
	if err := s.Users().CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

// Post returns a copy of the stored post, or nil
func (s *Store) Post(id primitive.ObjectID) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil
	}
	cp := clonePost(p)
	return &cp
}

// CommentCount returns the number of stored comments on postID
func (s *Store) CommentCount(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

// NotificationsFor returns every notification addressed to recipientID
func (s *Store) NotificationsFor(recipientID uint) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

func clonePost(p *models.Post) models.Post {
	cp := *p
	cp.Likes = append([]uint{}, p.Likes...)
	if p.RepostOf != nil {
		id := *p.RepostOf
		cp.RepostOf = &id
	}
	return cp
}

func sortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// PostRepo is an in-memory repositories.PostRepository
type PostRepo struct{ s *Store }

var _ repositories.PostRepository = (*PostRepo)(nil)

func (r *PostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if post.IsRepost() {
		for _, p := range r.s.posts {
			if p.IsRepost() && p.AuthorID == post.AuthorID && *p.RepostOf == *post.RepostOf {
				return repositories.ErrDuplicateRepost
			}
		}
	}
	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.s.now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	cp := clonePost(post)
	r.s.posts[post.ID] = &cp
	return nil
}

func (r *PostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	cp := clonePost(p)
	return &cp, nil
}

func (r *PostRepo) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls.GetPostsByIDs++
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := r.s.posts[id]; ok {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

func (r *PostRepo) GetPostsByAuthors(_ context.Context, authorIDs []uint, limit int64) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[uint]bool{}
	for _, id := range authorIDs {
		wanted[id] = true
	}
	out := []models.Post{}
	for _, p := range r.s.posts {
		if wanted[p.AuthorID] {
			out = append(out, clonePost(p))
		}
	}
	sortNewestFirst(out)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PostRepo) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.s.posts {
		out = append(out, clonePost(p))
	}
	sortNewestFirst(out)
	if skip >= int64(len(out)) {
		return []models.Post{}, nil
	}
	out = out[skip:]
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PostRepo) GetNearbyPosts(_ context.Context, lat, lng, maxDistanceMeters float64, limit int64) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	type hit struct {
		post models.Post
		km   float64
	}
	var hits []hit
	for _, p := range r.s.posts {
		if p.Location == nil {
			continue
		}
		km := geo.HaversineKm(lat, lng, p.Location.Lat(), p.Location.Lng())
		if km*1000 <= maxDistanceMeters {
			hits = append(hits, hit{clonePost(p), km})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].km < hits[j].km })
	out := []models.Post{}
	for _, h := range hits {
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		out = append(out, h.post)
	}
	return out, nil
}

func (r *PostRepo) FindRepost(_ context.Context, authorID uint, originalID primitive.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.SkipRepostLookup {
		return nil, nil
	}
	for _, p := range r.s.posts {
		if p.IsRepost() && p.AuthorID == authorID && *p.RepostOf == originalID {
			cp := clonePost(p)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *PostRepo) UpdatePostText(_ context.Context, id primitive.ObjectID, text string) (*models.Post, error) {
	return r.update(id, func(p *models.Post) bool {
		p.Text = text
		p.UpdatedAt = r.s.now()
		return true
	})
}

func (r *PostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepo) IncrementRepostsCount(_ context.Context, id primitive.ObjectID, delta int) (*models.Post, error) {
	return r.update(id, func(p *models.Post) bool {
		if p.RepostsCount+delta < 0 {
			return false
		}
		p.RepostsCount += delta
		return true
	})
}

func (r *PostRepo) IncrementCommentsCount(_ context.Context, id primitive.ObjectID) error {
	_, err := r.update(id, func(p *models.Post) bool {
		p.CommentsCount++
		return true
	})
	return err
}

func (r *PostRepo) AddLike(_ context.Context, id primitive.ObjectID, userID uint) (*models.Post, error) {
	return r.update(id, func(p *models.Post) bool {
		if !p.HasLike(userID) {
			p.Likes = append(p.Likes, userID)
		}
		return true
	})
}

// update applies fn when the post exists and fn accepts it, mirroring a
// filtered FindOneAndUpdate.
func (r *PostRepo) update(id primitive.ObjectID, fn func(p *models.Post) bool) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || !fn(p) {
		return nil, repositories.ErrPostNotFound
	}
	cp := clonePost(p)
	return &cp, nil
}

// UserRepo is an in-memory repositories.UserRepository
type UserRepo struct{ s *Store }

var _ repositories.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls.GetUsersByIDs++
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *UserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *UserRepo) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *UserRepo) UpdateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	user.UpdatedAt = r.s.now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

// UpdateUserFields understands the column names the handlers write
func (r *UserRepo) UpdateUserFields(_ context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	for col, v := range fields {
		switch col {
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		case "country":
			u.Country = v.(string)
		case "city":
			u.City = v.(string)
		case "password":
			u.Password = v.(string)
		case "pref_private_account":
			u.Preferences.PrivateAccount = v.(bool)
		case "pref_show_profile_location":
			u.Preferences.ShowProfileLocation = v.(bool)
		case "pref_email_notifications":
			u.Preferences.EmailNotifications = v.(bool)
		case "pref_push_notifications":
			u.Preferences.PushNotifications = v.(bool)
		}
	}
	u.UpdatedAt = r.s.now()
	cp := *u
	return &cp, nil
}

func (r *UserRepo) DeleteUser(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.User{}
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CommentRepo is an in-memory repositories.CommentRepository
type CommentRepo struct{ s *Store }

var _ repositories.CommentRepository = (*CommentRepo)(nil)

func (r *CommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.nextID()
	comment.CreatedAt = r.s.now()
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r *CommentRepo) GetCommentsByPostIDs(_ context.Context, postIDs []string) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls.GetCommentsByPostIDs++
	wanted := map[string]bool{}
	for _, id := range postIDs {
		wanted[id] = true
	}
	out := []models.Comment{}
	for _, c := range r.s.comments {
		if wanted[c.PostID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CommentRepo) DeleteCommentsByPostID(_ context.Context, postID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.comments[:0]
	var deleted int64
	for _, c := range r.s.comments {
		if c.PostID == postID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	r.s.comments = kept
	return deleted, nil
}

func (r *CommentRepo) DeleteComment(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.comments {
		if c.ID == id {
			r.s.comments = append(r.s.comments[:i], r.s.comments[i+1:]...)
			return nil
		}
	}
	return nil
}

// FollowRepo is an in-memory repositories.FollowRepository
type FollowRepo struct{ s *Store }

var _ repositories.FollowRepository = (*FollowRepo)(nil)

func (r *FollowRepo) CreateFollow(_ context.Context, follow *models.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return repositories.ErrAlreadyFollowing
		}
	}
	follow.ID = r.s.nextID()
	follow.CreatedAt = r.s.now()
	r.s.follows = append(r.s.follows, *follow)
	return nil
}

func (r *FollowRepo) DeleteFollow(_ context.Context, followerID, followingID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, f := range r.s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			r.s.follows = append(r.s.follows[:i], r.s.follows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrFollowNotFound
}

func (r *FollowRepo) DeleteFollowsOfUser(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.follows[:0]
	for _, f := range r.s.follows {
		if f.FollowerID != userID && f.FollowingID != userID {
			kept = append(kept, f)
		}
	}
	r.s.follows = kept
	return nil
}

func (r *FollowRepo) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *FollowRepo) GetFollowers(_ context.Context, userID uint) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, f := range r.s.follows {
		if u, ok := r.s.users[f.FollowerID]; ok && f.FollowingID == userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *FollowRepo) GetFollowing(_ context.Context, userID uint) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, f := range r.s.follows {
		if u, ok := r.s.users[f.FollowingID]; ok && f.FollowerID == userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *FollowRepo) GetFollowersCount(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, f := range r.s.follows {
		if f.FollowingID == userID {
			n++
		}
	}
	return n, nil
}

func (r *FollowRepo) GetFollowingCount(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, f := range r.s.follows {
		if f.FollowerID == userID {
			n++
		}
	}
	return n, nil
}

func (r *FollowRepo) GetFollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uint{}
	for _, f := range r.s.follows {
		if f.FollowerID == userID {
			ids = append(ids, f.FollowingID)
		}
	}
	return ids, nil
}

// NotificationRepo is an in-memory repositories.NotificationRepository
type NotificationRepo struct{ s *Store }

var _ repositories.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.nextID()
	n.CreatedAt = r.s.now()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r *NotificationRepo) GetByRecipientID(_ context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []models.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		if r.s.notifications[i].RecipientID == recipientID {
			all = append(all, r.s.notifications[i])
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *NotificationRepo) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, notif := range r.s.notifications {
		if notif.RecipientID == recipientID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepo) MarkAllAsRead(_ context.Context, recipientID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].RecipientID == recipientID {
			r.s.notifications[i].IsRead = true
		}
	}
	return nil
}
