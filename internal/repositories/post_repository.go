package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	GetPostsByAuthors(ctx context.Context, authorIDs []uint, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetNearbyPosts(ctx context.Context, lat, lng, maxDistanceMeters float64, limit int64) ([]models.Post, error)
	FindRepost(ctx context.Context, authorID uint, originalID primitive.ObjectID) (*models.Post, error)
	UpdatePostText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	IncrementRepostsCount(ctx context.Context, id primitive.ObjectID, delta int) (*models.Post, error)
	IncrementCommentsCount(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Post, error)
}

// ParsePostID converts a hex string into a post id
func ParsePostID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return objID, nil
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the read and write paths rely on. The
// unique partial index on (author_id, repost_of) is what makes a second
// repost of the same post by the same user fail with a duplicate key.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "repost_of", Value: 1}},
			Options: options.Index().
				SetName("uniq_author_repost").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"repost_of": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("author_created_at"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at"),
		},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		// $addToSet fails on a null field
		post.Likes = []uint{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateRepost
		}
		return err
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByIDs retrieves every post whose id is in ids. Missing ids are
// simply absent from the result.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// GetPostsByAuthors retrieves posts by any of the given authors, newest
// first. A limit of 0 means no limit.
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []uint, limit int64) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	return r.find(ctx, bson.M{"author_id": bson.M{"$in": authorIDs}}, findOptions)
}

// GetAllPosts retrieves all posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.D{}, findOptions)
}

// GetNearbyPosts retrieves posts located within maxDistanceMeters of the
// point, nearest first. Posts without a location never match $near.
func (r *MongoPostRepository) GetNearbyPosts(ctx context.Context, lat, lng, maxDistanceMeters float64, limit int64) ([]models.Post, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry":    bson.M{"type": "Point", "coordinates": bson.A{lng, lat}},
				"$maxDistance": maxDistanceMeters,
			},
		},
	}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

// FindRepost returns the user's existing repost of originalID, or nil when
// there is none.
func (r *MongoPostRepository) FindRepost(ctx context.Context, authorID uint, originalID primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"author_id": authorID, "repost_of": originalID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// UpdatePostText replaces the text of a post and returns the updated post
func (r *MongoPostRepository) UpdatePostText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error) {
	update := bson.M{"$set": bson.M{"text": text, "updated_at": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, id, update)
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IncrementRepostsCount atomically adds delta to reposts_count and returns
// the post as it is after the update. The counter never drops below zero.
func (r *MongoPostRepository) IncrementRepostsCount(ctx context.Context, id primitive.ObjectID, delta int) (*models.Post, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["reposts_count"] = bson.M{"$gte": -delta}
	}
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"reposts_count": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// IncrementCommentsCount increments the comments count of a post
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"comments_count": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AddLike adds userID to the post's like set and returns the updated post.
// Adding a user that already liked the post leaves the set unchanged.
func (r *MongoPostRepository) AddLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Post, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *MongoPostRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, findOptions *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
