package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mini-twitter/internal/auth"
	"mini-twitter/internal/models"
	"mini-twitter/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserService handles user-related business logic
type UserService struct {
	userRepo       UserStore
	friendShipRepo FriendShipStore
	tweetRepo      TweetStore
	hashParams     *auth.Params
}

// NewUserService creates a new user service. A nil hashParams selects
// auth.DefaultParams.
func NewUserService(userRepo UserStore, friendShipRepo FriendShipStore, tweetRepo TweetStore, hashParams *auth.Params) *UserService {
	if hashParams == nil {
		hashParams = auth.DefaultParams
	}
	return &UserService{
		userRepo:       userRepo,
		friendShipRepo: friendShipRepo,
		tweetRepo:      tweetRepo,
		hashParams:     hashParams,
	}
}

// Signup creates a user with a hashed password
func (s *UserService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.CreateHash(password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		Password:  hash,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("username", username).Msg("User signed up")
	return user, nil
}

// Authenticate checks a username and password pair
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := auth.ComparePasswordAndHash(password, user.Password)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Stored password hash is unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByUsername retrieves a user by username
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// UpdateProfile changes the email and bio of user
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, email, bio string) error {
	if err := s.userRepo.UpdateProfile(ctx, user.ID, email, bio); err != nil {
		return err
	}
	user.Email = email
	user.Bio = bio
	return nil
}

// SetPushToken registers the APNs device token of userID. An empty token
// disables push for the user.
func (s *UserService) SetPushToken(ctx context.Context, userID, deviceToken string) error {
	var tok *string
	if deviceToken != "" {
		tok = &deviceToken
	}
	return s.userRepo.UpdatePushToken(ctx, userID, tok)
}

// Profile assembles the profile page of username as seen by viewer
func (s *UserService) Profile(ctx context.Context, viewer *models.User, username string) (*models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.ProfileOf(ctx, viewer, user)
}

// ProfileOf assembles the profile page of an already loaded user
func (s *UserService) ProfileOf(ctx context.Context, viewer, user *models.User) (*models.Profile, error) {
	following, err := s.friendShipRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.friendShipRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	viewerID := ""
	isFollowing := false
	if viewer != nil {
		viewerID = viewer.ID
		if viewer.ID != user.ID {
			isFollowing, err = s.friendShipRepo.Exists(ctx, viewer.ID, user.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	tweets, err := s.tweetRepo.ListByUser(ctx, viewerID, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:           user,
		IsFollowing:    isFollowing,
		FollowingCount: following,
		FollowersCount: followers,
		Tweets:         tweets,
	}, nil
}
