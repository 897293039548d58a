package services

import (
	"context"
	"fmt"
	"time"

	"mini-twitter/internal/models"

	"github.com/rs/zerolog/log"
)

// FollowService handles follow-graph business logic
type FollowService struct {
	friendShipRepo FriendShipStore
	userRepo       UserStore
	notifier       *Notifier
}

// NewFollowService creates a new follow service
func NewFollowService(friendShipRepo FriendShipStore, userRepo UserStore, notifier *Notifier) *FollowService {
	return &FollowService{
		friendShipRepo: friendShipRepo,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

// Follow makes follower follow the user named username. Following someone
// already followed is a no-op.
func (s *FollowService) Follow(ctx context.Context, follower *models.User, username string) (*models.User, error) {
	followee, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if follower.ID == followee.ID {
		return nil, ErrSelfFollow
	}

	exists, err := s.friendShipRepo.Exists(ctx, follower.ID, followee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if exists {
		return followee, nil
	}

	if err := s.friendShipRepo.Add(ctx, follower.ID, followee.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}

	log.Info().
		Str("follower_id", follower.ID).
		Str("followee_id", followee.ID).
		Msg("User followed")

	s.notifier.Followed(ctx, follower, followee)
	return followee, nil
}

// Unfollow removes the follow edge from follower to username. Removing a
// missing edge is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, follower *models.User, username string) (*models.User, error) {
	followee, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if follower.ID == followee.ID {
		return nil, ErrSelfFollow
	}

	if err := s.friendShipRepo.Remove(ctx, follower.ID, followee.ID); err != nil {
		return nil, fmt.Errorf("failed to delete friendship: %w", err)
	}

	log.Info().
		Str("follower_id", follower.ID).
		Str("followee_id", followee.ID).
		Msg("User unfollowed")

	return followee, nil
}

// Following lists the users user follows, newest first
func (s *FollowService) Following(ctx context.Context, user *models.User) ([]*models.FollowEntry, error) {
	return s.friendShipRepo.ListFollowing(ctx, user.ID)
}

// Followers lists the users following user, newest first
func (s *FollowService) Followers(ctx context.Context, user *models.User) ([]*models.FollowEntry, error) {
	return s.friendShipRepo.ListFollowers(ctx, user.ID)
}
