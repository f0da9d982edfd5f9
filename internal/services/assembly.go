package services

import (
	"context"
	"slices"

	"github.com/Safa-Alshukaili/mini-pro/internal/metrics"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assembler turns raw post records into hydrated views. It resolves authors
// and repost originals in bulk and attaches comments with one query per
// batch, whatever the batch size.
type Assembler struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	comments repositories.CommentRepository
}

// NewAssembler creates a new Assembler
func NewAssembler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, commentRepo repositories.CommentRepository) *Assembler {
	return &Assembler{
		posts:    postRepo,
		users:    userRepo,
		comments: commentRepo,
	}
}

// Hydrate returns one view per post, in input order. A repost whose original
// no longer exists gets a nil Original.
func (a *Assembler) Hydrate(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	metrics.PostsHydrated.Observe(float64(len(posts)))
	views := make([]models.PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	originals, err := a.resolveOriginals(ctx, posts)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint, 0, len(posts)+len(originals))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	for _, o := range originals {
		authorIDs = append(authorIDs, o.AuthorID)
	}
	authors := map[uint]*models.AuthorSummary{}
	if err := a.resolveAuthors(ctx, authorIDs, authors); err != nil {
		return nil, err
	}

	for i, p := range posts {
		views[i] = models.PostView{
			Post:     p,
			Author:   authors[p.AuthorID],
			Comments: []models.CommentView{},
		}
		if !p.IsRepost() {
			continue
		}
		if orig, ok := originals[*p.RepostOf]; ok {
			views[i].Original = &models.PostView{
				Post:     *orig,
				Author:   authors[orig.AuthorID],
				Comments: []models.CommentView{},
			}
		}
	}

	if err := a.attachComments(ctx, views, authors); err != nil {
		return nil, err
	}
	return views, nil
}

// HydrateOne is Hydrate for a single post
func (a *Assembler) HydrateOne(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := a.Hydrate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// resolveOriginals fetches every distinct repost target of the batch at once.
func (a *Assembler) resolveOriginals(ctx context.Context, posts []models.Post) (map[primitive.ObjectID]*models.Post, error) {
	ids := lo.Uniq(lo.FilterMap(posts, func(p models.Post, _ int) (primitive.ObjectID, bool) {
		if !p.IsRepost() {
			return primitive.NilObjectID, false
		}
		return *p.RepostOf, true
	}))
	originals := make(map[primitive.ObjectID]*models.Post, len(ids))
	if len(ids) == 0 {
		return originals, nil
	}

	found, err := a.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		originals[found[i].ID] = &found[i]
	}
	return originals, nil
}

// resolveAuthors adds the summaries of ids missing from into with a single
// user query. Unknown users stay absent, leaving a nil author.
func (a *Assembler) resolveAuthors(ctx context.Context, ids []uint, into map[uint]*models.AuthorSummary) error {
	missing := lo.Filter(lo.Uniq(ids), func(id uint, _ int) bool {
		_, ok := into[id]
		return !ok
	})
	if len(missing) == 0 {
		return nil
	}

	users, err := a.users.GetUsersByIDs(ctx, missing)
	if err != nil {
		return err
	}
	for i := range users {
		summary := users[i].ToSummary()
		into[users[i].ID] = &summary
	}
	return nil
}

// attachComments fetches the comments of every canonical post in the batch
// in one query and groups them by post id. Reposts receive theirs through
// the embedded original.
func (a *Assembler) attachComments(ctx context.Context, views []models.PostView, authors map[uint]*models.AuthorSummary) error {
	targets := make(map[string][]*models.PostView, len(views))
	for i := range views {
		v := &views[i]
		if v.IsRepost() {
			if v.Original != nil {
				id := v.Original.ID.Hex()
				targets[id] = append(targets[id], v.Original)
			}
			continue
		}
		id := v.ID.Hex()
		targets[id] = append(targets[id], v)
	}
	if len(targets) == 0 {
		return nil
	}

	comments, err := a.comments.GetCommentsByPostIDs(ctx, lo.Keys(targets))
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		return nil
	}

	commentAuthorIDs := lo.Map(comments, func(c models.Comment, _ int) uint { return c.AuthorID })
	if err := a.resolveAuthors(ctx, commentAuthorIDs, authors); err != nil {
		return err
	}

	grouped := make(map[string][]models.CommentView, len(targets))
	for _, c := range comments {
		grouped[c.PostID] = append(grouped[c.PostID], models.CommentView{
			Comment: c,
			Author:  authors[c.AuthorID],
		})
	}
	for id, vs := range targets {
		group, ok := grouped[id]
		if !ok {
			continue
		}
		for _, v := range vs {
			v.Comments = slices.Clone(group)
		}
	}
	return nil
}
