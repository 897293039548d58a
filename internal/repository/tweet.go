package repository

import (
	"context"
	"fmt"

	"mini-twitter/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tweetSelect joins the author and like aggregates; $1 is the viewer ID
const tweetSelect = `
	SELECT t.id, t.user_id, t.body, t.created_at, u.username,
	       (SELECT COUNT(*) FROM tweet_likes l WHERE l.tweet_id = t.id),
	       EXISTS(SELECT 1 FROM tweet_likes l WHERE l.tweet_id = t.id AND l.user_id = $1)
	FROM tweets t
	JOIN users u ON u.id = t.user_id
`

// TweetRepository handles database operations for tweets
type TweetRepository struct {
	db *pgxpool.Pool
}

// NewTweetRepository creates a new tweet repository
func NewTweetRepository(db *pgxpool.Pool) *TweetRepository {
	return &TweetRepository{db: db}
}

// Create creates a new tweet
func (r *TweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	query := `
		INSERT INTO tweets (id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, tweet.ID, tweet.UserID, tweet.Body, tweet.CreatedAt)
	if err != nil {
		return wrapErr(err, "create tweet")
	}
	return nil
}

// GetByID retrieves a tweet with its author and like data as seen by viewerID
func (r *TweetRepository) GetByID(ctx context.Context, viewerID, id string) (*models.Tweet, error) {
	query := tweetSelect + ` WHERE t.id = $2`
	tweet, err := scanTweet(r.db.QueryRow(ctx, query, viewerID, id))
	if err != nil {
		return nil, wrapErr(err, "get tweet")
	}
	return tweet, nil
}

// Delete deletes a tweet by ID
func (r *TweetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tweet: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete tweet: %w", ErrNotFound)
	}
	return nil
}

// List retrieves the global timeline, newest first, with pagination
func (r *TweetRepository) List(ctx context.Context, viewerID string, limit, offset int) ([]*models.Tweet, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tweets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tweets: %w", err)
	}

	query := tweetSelect + `
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3
	`
	tweets, err := r.query(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return tweets, total, nil
}

// ListByUser retrieves every tweet of userID, newest first
func (r *TweetRepository) ListByUser(ctx context.Context, viewerID, userID string) ([]*models.Tweet, error) {
	query := tweetSelect + `
		WHERE t.user_id = $2
		ORDER BY t.created_at DESC
	`
	return r.query(ctx, query, viewerID, userID)
}

func (r *TweetRepository) query(ctx context.Context, query string, args ...any) ([]*models.Tweet, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tweets: %w", err)
	}
	defer rows.Close()

	var tweets []*models.Tweet
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tweets: %w", err)
	}
	return tweets, nil
}

func scanTweet(row pgx.Row) (*models.Tweet, error) {
	var tweet models.Tweet
	err := row.Scan(
		&tweet.ID, &tweet.UserID, &tweet.Body, &tweet.CreatedAt,
		&tweet.Username, &tweet.LikeCount, &tweet.Liked,
	)
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}
