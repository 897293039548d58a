package services

import (
	"context"
	"fmt"
	"time"

	"mini-twitter/internal/models"

	"github.com/rs/zerolog/log"
)

const pushTimeout = 5 * time.Second

// Pusher delivers an alert to a mobile device
type Pusher interface {
	Push(ctx context.Context, deviceToken, alert string) error
}

// Notifier fans domain events out to connected clients. Users that are
// online get a WebSocket message; offline users with a registered device
// get a push notification. Delivery is best effort and never fails the
// operation that triggered it.
type Notifier struct {
	hub            *WSHub
	pusher         Pusher
	userRepo       UserStore
	friendShipRepo FriendShipStore
}

// NewNotifier creates a notifier. pusher may be nil to disable push.
func NewNotifier(hub *WSHub, pusher Pusher, userRepo UserStore, friendShipRepo FriendShipStore) *Notifier {
	return &Notifier{
		hub:            hub,
		pusher:         pusher,
		userRepo:       userRepo,
		friendShipRepo: friendShipRepo,
	}
}

// TweetCreated streams a new tweet to the author's online followers
func (n *Notifier) TweetCreated(ctx context.Context, tweet *models.Tweet) {
	if n == nil {
		return
	}
	followerIDs, err := n.friendShipRepo.FollowerIDs(ctx, tweet.UserID)
	if err != nil {
		log.Error().Err(err).Str("tweet_id", tweet.ID).Msg("Failed to load followers for notification")
		return
	}
	sent := n.hub.Broadcast(followerIDs, WSMessage{
		Type:     MsgTypeNewTweet,
		Username: tweet.Username,
		TweetID:  tweet.ID,
		Tweet:    tweet,
	})
	log.Debug().Str("tweet_id", tweet.ID).Int("delivered", sent).Msg("New tweet broadcast")
}

// Followed tells followee that follower started following them
func (n *Notifier) Followed(ctx context.Context, follower, followee *models.User) {
	if n == nil {
		return
	}
	n.notify(ctx, followee, WSMessage{
		Type:     MsgTypeFollowed,
		Username: follower.Username,
		Message:  fmt.Sprintf("%s started following you", follower.Username),
	})
}

// Liked tells the author of tweet that liker liked it. Self-likes are
// not reported.
func (n *Notifier) Liked(ctx context.Context, liker *models.User, tweet *models.Tweet) {
	if n == nil || liker.ID == tweet.UserID {
		return
	}
	author, err := n.userRepo.GetByID(ctx, tweet.UserID)
	if err != nil {
		log.Error().Err(err).Str("tweet_id", tweet.ID).Msg("Failed to load tweet author for notification")
		return
	}
	n.notify(ctx, author, WSMessage{
		Type:     MsgTypeLiked,
		Username: liker.Username,
		TweetID:  tweet.ID,
		Message:  fmt.Sprintf("%s liked your tweet", liker.Username),
	})
}

func (n *Notifier) notify(ctx context.Context, user *models.User, message WSMessage) {
	if n.hub.IsOnline(user.ID) {
		err := n.hub.SendToUser(user.ID, message)
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("user_id", user.ID).Msg("WebSocket delivery failed, falling back to push")
	}

	if n.pusher == nil || user.PushToken == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	if err := n.pusher.Push(ctx, *user.PushToken, message.Message); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send push notification")
	}
}
