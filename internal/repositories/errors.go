package repositories

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id format")
	ErrPostNotFound     = errors.New("post not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateRepost  = errors.New("post already reposted by this user")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrFollowNotFound   = errors.New("follow relationship not found")
)
