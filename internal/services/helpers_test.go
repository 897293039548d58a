package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mini-twitter/internal/auth"
	"mini-twitter/internal/cache"
	"mini-twitter/internal/models"
	"mini-twitter/internal/repository"

	"github.com/stretchr/testify/require"
)

var fastParams = &auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testEnv struct {
	db       *repository.MockDB
	hub      *WSHub
	pusher   *fakePusher
	users    *UserService
	sessions *SessionService
	follows  *FollowService
	tweets   *TweetService
	likes    *LikeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repository.NewMockDB()
	hub := NewWSHub()
	pusher := &fakePusher{}
	notifier := NewNotifier(hub, pusher, db.Users(), db.FriendShips())
	return &testEnv{
		db:       db,
		hub:      hub,
		pusher:   pusher,
		users:    NewUserService(db.Users(), db.FriendShips(), db.Tweets(), fastParams),
		sessions: NewSessionService(cache.NewMemorySessionStore(), "test-secret", time.Hour),
		follows:  NewFollowService(db.FriendShips(), db.Users(), notifier),
		tweets:   NewTweetService(db.Tweets(), notifier),
		likes:    NewLikeService(db.Likes(), db.Tweets(), notifier),
	}
}

func (e *testEnv) signup(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.Signup(context.Background(), username, username+"@example.com", "sak2ED@df#")
	require.NoError(t, err)
	return user
}

type pushed struct {
	token string
	alert string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []pushed
	err  error
}

func (p *fakePusher) Push(ctx context.Context, deviceToken, alert string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, pushed{token: deviceToken, alert: alert})
	return nil
}

func (p *fakePusher) all() []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushed(nil), p.sent...)
}

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	failNext bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.failNext {
		return errors.New("write on closed connection")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (e *testEnv) mustUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return user
}
