package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mini-twitter/internal/forms"
	"mini-twitter/internal/models"
	"mini-twitter/internal/repository"
)

var (
	// ErrNotFound is returned when a user or tweet does not exist
	ErrNotFound = repository.ErrNotFound
	// ErrUsernameTaken is returned by Signup for an existing username
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned by Authenticate on a bad login
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSelfFollow is returned when a user targets themself
	ErrSelfFollow = errors.New("this operation cannot be performed on yourself")
	// ErrForbidden is returned when the actor does not own the resource
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidTweet is returned for an empty or over-long body
	ErrInvalidTweet = fmt.Errorf("tweet body must be 1 to %d characters", forms.MaxTweetLength)
)

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, userID, email, bio string) error
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// FriendShipStore persists the follow graph
type FriendShipStore interface {
	Add(ctx context.Context, followerID, followeeID string, createdAt time.Time) error
	Remove(ctx context.Context, followerID, followeeID string) error
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	ListFollowing(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	ListFollowers(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// TweetStore persists tweets
type TweetStore interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, viewerID, id string) (*models.Tweet, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, viewerID string, limit, offset int) ([]*models.Tweet, int, error)
	ListByUser(ctx context.Context, viewerID, userID string) ([]*models.Tweet, error)
}

// LikeStore persists tweet likes
type LikeStore interface {
	Add(ctx context.Context, tweetID, userID string, createdAt time.Time) error
	Remove(ctx context.Context, tweetID, userID string) error
	Count(ctx context.Context, tweetID string) (int, error)
}

// SessionStore maps session IDs to user IDs
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}
