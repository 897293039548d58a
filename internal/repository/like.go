package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles tweet likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records that userID likes tweetID. Repeated likes keep one row.
func (r *LikeRepository) Add(ctx context.Context, tweetID, userID string, createdAt time.Time) error {
	query := `
		INSERT INTO tweet_likes (tweet_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT unique_tweet_like DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, tweetID, userID, createdAt); err != nil {
		return wrapErr(err, "add like")
	}
	return nil
}

// Remove deletes the like of userID on tweetID if present
func (r *LikeRepository) Remove(ctx context.Context, tweetID, userID string) error {
	query := `DELETE FROM tweet_likes WHERE tweet_id = $1 AND user_id = $2`
	if _, err := r.db.Exec(ctx, query, tweetID, userID); err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

// Count returns the number of likes on tweetID
func (r *LikeRepository) Count(ctx context.Context, tweetID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tweet_likes WHERE tweet_id = $1`, tweetID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return n, nil
}
