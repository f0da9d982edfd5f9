package models

import "time"

// Follow represents a follow edge from FollowerID to FollowingID
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"followerId" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"followingId" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FollowRequest is the body of follow/unfollow calls
type FollowRequest struct {
	UserID uint `json:"userId"`
}
