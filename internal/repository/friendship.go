package repository

import (
	"context"
	"fmt"
	"time"

	"mini-twitter/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendShipRepository handles the follow graph
type FriendShipRepository struct {
	db *pgxpool.Pool
}

// NewFriendShipRepository creates a new friendship repository
func NewFriendShipRepository(db *pgxpool.Pool) *FriendShipRepository {
	return &FriendShipRepository{db: db}
}

// Add inserts a follow edge. An existing edge is left untouched.
func (r *FriendShipRepository) Add(ctx context.Context, followerID, followeeID string, createdAt time.Time) error {
	query := `
		INSERT INTO friendships (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT unique_friendship DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, followerID, followeeID, createdAt)
	if err != nil {
		return wrapErr(err, "add friendship")
	}
	return nil
}

// Remove deletes a follow edge if present
func (r *FriendShipRepository) Remove(ctx context.Context, followerID, followeeID string) error {
	query := `DELETE FROM friendships WHERE follower_id = $1 AND followee_id = $2`
	_, err := r.db.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	return nil
}

// Exists reports whether followerID follows followeeID
func (r *FriendShipRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM friendships WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, followerID, followeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// CountFollowing returns how many users userID follows
func (r *FriendShipRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM friendships WHERE follower_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return n, nil
}

// CountFollowers returns how many users follow userID
func (r *FriendShipRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM friendships WHERE followee_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return n, nil
}

// ListFollowing returns the users userID follows, most recent first
func (r *FriendShipRepository) ListFollowing(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	query := `
		SELECT u.id, u.username, u.email, u.bio, u.avatar_url, u.created_at, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`
	return r.listEntries(ctx, query, userID)
}

// ListFollowers returns the users following userID, most recent first
func (r *FriendShipRepository) ListFollowers(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	query := `
		SELECT u.id, u.username, u.email, u.bio, u.avatar_url, u.created_at, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`
	return r.listEntries(ctx, query, userID)
}

func (r *FriendShipRepository) listEntries(ctx context.Context, query, userID string) ([]*models.FollowEntry, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	defer rows.Close()

	var entries []*models.FollowEntry
	for rows.Next() {
		var u models.User
		var entry models.FollowEntry
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Bio, &u.AvatarURL, &u.CreatedAt, &entry.FollowedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		entry.User = &u
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}
	return entries, nil
}

// FollowerIDs returns the IDs of every follower of userID
func (r *FriendShipRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT follower_id FROM friendships WHERE followee_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follower ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect follower ids: %w", err)
	}
	return ids, nil
}
