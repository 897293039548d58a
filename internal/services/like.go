package services

import (
	"context"
	"fmt"
	"time"

	"mini-twitter/internal/models"
)

// LikeService handles tweet likes
type LikeService struct {
	likeRepo  LikeStore
	tweetRepo TweetStore
	notifier  *Notifier
}

// NewLikeService creates a new like service
func NewLikeService(likeRepo LikeStore, tweetRepo TweetStore, notifier *Notifier) *LikeService {
	return &LikeService{
		likeRepo:  likeRepo,
		tweetRepo: tweetRepo,
		notifier:  notifier,
	}
}

// Like records that user likes tweetID and returns the new like count.
// Liking twice keeps a single like.
func (s *LikeService) Like(ctx context.Context, user *models.User, tweetID string) (int, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, user.ID, tweetID)
	if err != nil {
		return 0, err
	}

	if !tweet.Liked {
		if err := s.likeRepo.Add(ctx, tweet.ID, user.ID, time.Now()); err != nil {
			return 0, fmt.Errorf("failed to like tweet: %w", err)
		}
		s.notifier.Liked(ctx, user, tweet)
	}

	return s.likeRepo.Count(ctx, tweet.ID)
}

// Unlike removes the like of user on tweetID and returns the new like
// count. Unliking a tweet that is not liked is a no-op.
func (s *LikeService) Unlike(ctx context.Context, user *models.User, tweetID string) (int, error) {
	if _, err := s.tweetRepo.GetByID(ctx, user.ID, tweetID); err != nil {
		return 0, err
	}

	if err := s.likeRepo.Remove(ctx, tweetID, user.ID); err != nil {
		return 0, fmt.Errorf("failed to unlike tweet: %w", err)
	}

	return s.likeRepo.Count(ctx, tweetID)
}
