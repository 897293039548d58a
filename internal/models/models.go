package models

import "time"

// User represents a registered account
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Bio       string    `json:"bio"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	PushToken *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendShip is one edge of the follow graph: Follower follows Followee
type FriendShip struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowEntry pairs a user with the time the relation was created
type FollowEntry struct {
	User       *User     `json:"user"`
	FollowedAt time.Time `json:"followed_at"`
}

// Tweet represents a post. Username, LikeCount and Liked are filled by
// read queries and are not stored on the row.
type Tweet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`

	Username  string `json:"username"`
	LikeCount int    `json:"like_count"`
	Liked     bool   `json:"liked"`
}

// TweetLike records that a user liked a tweet
type TweetLike struct {
	TweetID   string    `json:"tweet_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the data shown on a user's profile page
type Profile struct {
	User           *User    `json:"user"`
	IsFollowing    bool     `json:"is_following"`
	FollowingCount int      `json:"following_count"`
	FollowersCount int      `json:"followers_count"`
	Tweets         []*Tweet `json:"tweets"`
}
