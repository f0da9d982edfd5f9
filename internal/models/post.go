package models

import (
	"bytes"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON point. Coordinates are stored as [lng, lat] so the
// 2dsphere index can serve $near queries.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a point from latitude/longitude
func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Lat returns the latitude of the point
func (p *GeoPoint) Lat() float64 {
	if p == nil || len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Lng returns the longitude of the point
func (p *GeoPoint) Lng() float64 {
	if p == nil || len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Post represents a post stored in MongoDB. A post with RepostOf set is a
// repost shadow and never carries its own content, likes or comments.
type Post struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AuthorID        uint                   `json:"authorId" bson:"author_id"`
	Text            string                 `json:"text" bson:"text"`
	MediaURL        string                 `json:"mediaUrl,omitempty" bson:"media_url,omitempty"`
	Location        *GeoPoint              `json:"location,omitempty" bson:"location,omitempty"`
	LocationName    string                 `json:"locationName,omitempty" bson:"location_name,omitempty"`
	LocationDetails map[string]interface{} `json:"locationDetails,omitempty" bson:"location_details,omitempty"`
	RepostOf        *primitive.ObjectID    `json:"repostOf" bson:"repost_of,omitempty"`
	RepostsCount    int                    `json:"repostsCount" bson:"reposts_count"`
	Likes           []uint                 `json:"likes" bson:"likes"`
	CommentsCount   int                    `json:"commentsCount" bson:"comments_count"`
	CreatedAt       time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time              `json:"updatedAt" bson:"updated_at"`
}

// IsRepost reports whether the post is a repost shadow
func (p *Post) IsRepost() bool {
	return p.RepostOf != nil && !p.RepostOf.IsZero()
}

// CanonicalID returns the id that owns likes and comments for this post.
func (p *Post) CanonicalID() primitive.ObjectID {
	if p.IsRepost() {
		return *p.RepostOf
	}
	return p.ID
}

// HasLike reports whether userID is in the like set
func (p *Post) HasLike(userID uint) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// LooseText holds a JSON string as is and any other JSON value (number,
// object) as its raw text. Form fields bind to it like a plain string.
type LooseText string

func (t *LooseText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = LooseText(s)
	default:
		*t = LooseText(data)
	}
	return nil
}

// CreatePostRequest defines the request body for creating a new post.
// Coordinates may be numbers or strings and locationDetails an object or a
// JSON string; invalid values are dropped rather than rejected.
type CreatePostRequest struct {
	AuthorID        uint      `json:"authorId" form:"authorId"`
	Text            string    `json:"text" form:"text" validate:"max=2000"`
	MediaURL        string    `json:"mediaUrl" form:"mediaUrl" validate:"omitempty,max=2048"`
	Lat             LooseText `json:"lat" form:"lat"`
	Lng             LooseText `json:"lng" form:"lng"`
	LocationName    string    `json:"locationName" form:"locationName" validate:"max=200"`
	LocationDetails LooseText `json:"locationDetails" form:"locationDetails"`
}

// UpdatePostRequest defines the request body for editing a post's text
type UpdatePostRequest struct {
	UserID uint   `json:"userId"`
	Text   string `json:"text" validate:"max=2000"`
}

// PostActionRequest is the body shared by repost, like and delete
type PostActionRequest struct {
	UserID uint `json:"userId"`
}
