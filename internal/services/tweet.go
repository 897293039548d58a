package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"mini-twitter/internal/forms"
	"mini-twitter/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 100
)

// TweetService handles tweet-related business logic
type TweetService struct {
	tweetRepo TweetStore
	notifier  *Notifier
}

// NewTweetService creates a new tweet service
func NewTweetService(tweetRepo TweetStore, notifier *Notifier) *TweetService {
	return &TweetService{
		tweetRepo: tweetRepo,
		notifier:  notifier,
	}
}

// Create posts a tweet as author
func (s *TweetService) Create(ctx context.Context, author *models.User, body string) (*models.Tweet, error) {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > forms.MaxTweetLength {
		return nil, ErrInvalidTweet
	}

	tweet := &models.Tweet{
		ID:        uuid.New().String(),
		UserID:    author.ID,
		Body:      body,
		CreatedAt: time.Now(),
		Username:  author.Username,
	}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, fmt.Errorf("failed to create tweet: %w", err)
	}

	log.Info().Str("tweet_id", tweet.ID).Str("user_id", author.ID).Msg("Tweet created")

	s.notifier.TweetCreated(ctx, tweet)
	return tweet, nil
}

// Get retrieves a tweet as seen by viewerID
func (s *TweetService) Get(ctx context.Context, viewerID, id string) (*models.Tweet, error) {
	return s.tweetRepo.GetByID(ctx, viewerID, id)
}

// Delete removes a tweet owned by requester
func (s *TweetService) Delete(ctx context.Context, requester *models.User, id string) error {
	tweet, err := s.tweetRepo.GetByID(ctx, requester.ID, id)
	if err != nil {
		return err
	}
	if tweet.UserID != requester.ID {
		return ErrForbidden
	}

	if err := s.tweetRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("tweet_id", id).Str("user_id", requester.ID).Msg("Tweet deleted")
	return nil
}

// Feed returns the global timeline, newest first, with the total tweet
// count. limit is clamped to [1, MaxFeedLimit] and defaults to
// DefaultFeedLimit.
func (s *TweetService) Feed(ctx context.Context, viewerID string, limit, offset int) ([]*models.Tweet, int, error) {
	limit, offset = FeedWindow(limit, offset)
	return s.tweetRepo.List(ctx, viewerID, limit, offset)
}

// FeedWindow clamps a requested feed window to the supported range
func FeedWindow(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
