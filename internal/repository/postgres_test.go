package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"mini-twitter/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL (postgres://...) and migrates it
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	migrateURL := "pgx5://" + strings.TrimPrefix(strings.TrimPrefix(dsn, "postgres://"), "postgresql://")
	require.NoError(t, Migrate(migrateURL))

	db, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func createUser(t *testing.T, repo *UserRepository) *models.User {
	t.Helper()
	id := uuid.New().String()
	user := &models.User{
		ID:        id,
		Username:  "u" + strings.ReplaceAll(id, "-", "")[:20],
		Email:     "user@example.com",
		Password:  "hash",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPostgresUsers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	user := createUser(t, users)

	dup := *user
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, users.Create(ctx, &dup), ErrDuplicate)

	got, err := users.GetByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Nil(t, got.AvatarURL)

	require.NoError(t, users.UpdateProfile(ctx, user.ID, "new@example.com", "hello"))
	require.NoError(t, users.UpdateAvatarURL(ctx, user.ID, "https://cdn.example.com/a.png"))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "hello", got.Bio)
	require.NotNil(t, got.AvatarURL)

	_, err = users.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresFriendShips(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	friendships := NewFriendShipRepository(db)

	a, b, c := createUser(t, users), createUser(t, users), createUser(t, users)
	now := time.Now().UTC()

	require.NoError(t, friendships.Add(ctx, a.ID, b.ID, now))
	require.NoError(t, friendships.Add(ctx, a.ID, b.ID, now.Add(time.Second)))
	require.NoError(t, friendships.Add(ctx, c.ID, b.ID, now.Add(2*time.Second)))

	n, err := friendships.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	followers, err := friendships.ListFollowers(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, c.ID, followers[0].User.ID)
	assert.Equal(t, a.ID, followers[1].User.ID)

	require.NoError(t, friendships.Remove(ctx, a.ID, b.ID))
	ok, err := friendships.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresTweetsAndLikes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	tweets := NewTweetRepository(db)
	likes := NewLikeRepository(db)

	author, fan := createUser(t, users), createUser(t, users)
	tweet := &models.Tweet{
		ID:        uuid.New().String(),
		UserID:    author.ID,
		Body:      strings.Repeat("あ", 140),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, tweets.Create(ctx, tweet))

	now := time.Now().UTC()
	require.NoError(t, likes.Add(ctx, tweet.ID, fan.ID, now))
	require.NoError(t, likes.Add(ctx, tweet.ID, fan.ID, now))
	count, err := likes.Count(ctx, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := tweets.GetByID(ctx, fan.ID, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, author.Username, got.Username)
	assert.Equal(t, 1, got.LikeCount)
	assert.True(t, got.Liked)

	got, err = tweets.GetByID(ctx, author.ID, tweet.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)

	require.NoError(t, tweets.Delete(ctx, tweet.ID))
	assert.ErrorIs(t, tweets.Delete(ctx, tweet.ID), ErrNotFound)
	_, err = tweets.GetByID(ctx, fan.ID, tweet.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
