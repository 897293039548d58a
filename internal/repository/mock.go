package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mini-twitter/internal/models"
)

// MockDB is an in-memory stand-in for Postgres used by tests. It enforces
// the same unique constraints and cascades as the real schema.
type MockDB struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	friendships []models.FriendShip
	tweets      map[string]*models.Tweet
	likes       []models.TweetLike
}

// NewMockDB initializes an empty mock database
func NewMockDB() *MockDB {
	return &MockDB{
		users:  make(map[string]*models.User),
		tweets: make(map[string]*models.Tweet),
	}
}

// Users returns a user repository backed by the mock
func (m *MockDB) Users() *MockUserRepository { return &MockUserRepository{m} }

// FriendShips returns a friendship repository backed by the mock
func (m *MockDB) FriendShips() *MockFriendShipRepository { return &MockFriendShipRepository{m} }

// Tweets returns a tweet repository backed by the mock
func (m *MockDB) Tweets() *MockTweetRepository { return &MockTweetRepository{m} }

// Likes returns a like repository backed by the mock
func (m *MockDB) Likes() *MockLikeRepository { return &MockLikeRepository{m} }

// FriendShipCount returns the number of stored (follower, followee) rows
func (m *MockDB) FriendShipCount(followerID, followeeID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, f := range m.friendships {
		if f.FollowerID == followerID && f.FolloweeID == followeeID {
			n++
		}
	}
	return n
}

// LikeCount returns the number of stored (tweet, user) like rows
func (m *MockDB) LikeCount(tweetID, userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.likes {
		if l.TweetID == tweetID && l.UserID == userID {
			n++
		}
	}
	return n
}

// TweetExists reports whether a tweet row is stored
func (m *MockDB) TweetExists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tweets[id]
	return ok
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

// ---------------------------------------------

// MockUserRepository mirrors UserRepository
type MockUserRepository struct{ db *MockDB }

func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == user.Username {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
	}
	r.db.users[user.ID] = copyUser(user)
	return nil
}

func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", ErrNotFound)
	}
	return copyUser(u), nil
}

func (r *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("get user by username: %w", ErrNotFound)
}

func (r *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *MockUserRepository) UpdateProfile(ctx context.Context, userID, email, bio string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return fmt.Errorf("update profile: %w", ErrNotFound)
	}
	u.Email, u.Bio = email, bio
	return nil
}

func (r *MockUserRepository) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return fmt.Errorf("update avatar url: %w", ErrNotFound)
	}
	u.AvatarURL = &avatarURL
	return nil
}

func (r *MockUserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u, ok := r.db.users[userID]; ok {
		u.PushToken = pushToken
	}
	return nil
}

// ---------------------------------------------

// MockFriendShipRepository mirrors FriendShipRepository
type MockFriendShipRepository struct{ db *MockDB }

func (r *MockFriendShipRepository) Add(ctx context.Context, followerID, followeeID string, createdAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, f := range r.db.friendships {
		if f.FollowerID == followerID && f.FolloweeID == followeeID {
			return nil
		}
	}
	r.db.friendships = append(r.db.friendships, models.FriendShip{
		FollowerID: followerID, FolloweeID: followeeID, CreatedAt: createdAt,
	})
	return nil
}

func (r *MockFriendShipRepository) Remove(ctx context.Context, followerID, followeeID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.friendships[:0]
	for _, f := range r.db.friendships {
		if f.FollowerID == followerID && f.FolloweeID == followeeID {
			continue
		}
		kept = append(kept, f)
	}
	r.db.friendships = kept
	return nil
}

func (r *MockFriendShipRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	return r.db.FriendShipCount(followerID, followeeID) > 0, nil
}

func (r *MockFriendShipRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	following, _ := r.ListFollowing(ctx, userID)
	return len(following), nil
}

func (r *MockFriendShipRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	followers, _ := r.ListFollowers(ctx, userID)
	return len(followers), nil
}

func (r *MockFriendShipRepository) ListFollowing(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	return r.list(func(f models.FriendShip) (string, bool) {
		return f.FolloweeID, f.FollowerID == userID
	}), nil
}

func (r *MockFriendShipRepository) ListFollowers(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	return r.list(func(f models.FriendShip) (string, bool) {
		return f.FollowerID, f.FolloweeID == userID
	}), nil
}

func (r *MockFriendShipRepository) list(match func(models.FriendShip) (string, bool)) []*models.FollowEntry {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var entries []*models.FollowEntry
	for _, f := range r.db.friendships {
		other, ok := match(f)
		if !ok {
			continue
		}
		if u, exists := r.db.users[other]; exists {
			entries = append(entries, &models.FollowEntry{User: copyUser(u), FollowedAt: f.CreatedAt})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FollowedAt.After(entries[j].FollowedAt)
	})
	return entries
}

func (r *MockFriendShipRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	followers, _ := r.ListFollowers(ctx, userID)
	ids := make([]string, 0, len(followers))
	for _, f := range followers {
		ids = append(ids, f.User.ID)
	}
	return ids, nil
}

// ---------------------------------------------

// MockTweetRepository mirrors TweetRepository
type MockTweetRepository struct{ db *MockDB }

func (r *MockTweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[tweet.UserID]; !ok {
		return fmt.Errorf("failed to create tweet: unknown user %s", tweet.UserID)
	}
	t := *tweet
	r.db.tweets[t.ID] = &t
	return nil
}

func (r *MockTweetRepository) GetByID(ctx context.Context, viewerID, id string) (*models.Tweet, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tweets[id]
	if !ok {
		return nil, fmt.Errorf("get tweet: %w", ErrNotFound)
	}
	return r.view(t, viewerID), nil
}

func (r *MockTweetRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tweets[id]; !ok {
		return fmt.Errorf("delete tweet: %w", ErrNotFound)
	}
	delete(r.db.tweets, id)
	kept := r.db.likes[:0]
	for _, l := range r.db.likes {
		if l.TweetID != id {
			kept = append(kept, l)
		}
	}
	r.db.likes = kept
	return nil
}

func (r *MockTweetRepository) List(ctx context.Context, viewerID string, limit, offset int) ([]*models.Tweet, int, error) {
	all := r.filter(viewerID, func(*models.Tweet) bool { return true })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *MockTweetRepository) ListByUser(ctx context.Context, viewerID, userID string) ([]*models.Tweet, error) {
	return r.filter(viewerID, func(t *models.Tweet) bool { return t.UserID == userID }), nil
}

func (r *MockTweetRepository) filter(viewerID string, keep func(*models.Tweet) bool) []*models.Tweet {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var tweets []*models.Tweet
	for _, t := range r.db.tweets {
		if keep(t) {
			tweets = append(tweets, r.view(t, viewerID))
		}
	}
	sort.Slice(tweets, func(i, j int) bool {
		return tweets[i].CreatedAt.After(tweets[j].CreatedAt)
	})
	return tweets
}

// view must be called with the lock held
func (r *MockTweetRepository) view(t *models.Tweet, viewerID string) *models.Tweet {
	v := *t
	if u, ok := r.db.users[t.UserID]; ok {
		v.Username = u.Username
	}
	v.LikeCount, v.Liked = 0, false
	for _, l := range r.db.likes {
		if l.TweetID != t.ID {
			continue
		}
		v.LikeCount++
		if l.UserID == viewerID {
			v.Liked = true
		}
	}
	return &v
}

// ---------------------------------------------

// MockLikeRepository mirrors LikeRepository
type MockLikeRepository struct{ db *MockDB }

func (r *MockLikeRepository) Add(ctx context.Context, tweetID, userID string, createdAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tweets[tweetID]; !ok {
		return fmt.Errorf("add like: %w", ErrNotFound)
	}
	for _, l := range r.db.likes {
		if l.TweetID == tweetID && l.UserID == userID {
			return nil
		}
	}
	r.db.likes = append(r.db.likes, models.TweetLike{TweetID: tweetID, UserID: userID, CreatedAt: createdAt})
	return nil
}

func (r *MockLikeRepository) Remove(ctx context.Context, tweetID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.likes[:0]
	for _, l := range r.db.likes {
		if l.TweetID == tweetID && l.UserID == userID {
			continue
		}
		kept = append(kept, l)
	}
	r.db.likes = kept
	return nil
}

func (r *MockLikeRepository) Count(ctx context.Context, tweetID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for _, l := range r.db.likes {
		if l.TweetID == tweetID {
			n++
		}
	}
	return n, nil
}
