package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mini-twitter/internal/models"
	"mini-twitter/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

// Guard failure messages
const (
	MsgUserNotFound  = "The specified user does not exist."
	MsgTweetNotFound = "The specified tweet does not exist."
	MsgForbidden     = "You do not have permission to perform this action."
	MsgServerError   = "Internal server error"
)

// MessageResponse is the JSON body of guard and follow/like responses
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondMessage writes a {"message": ...} JSON body with statusCode
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(MessageResponse{Message: message})
}

// TweetGetter loads a tweet as seen by a viewer
type TweetGetter interface {
	Get(ctx context.Context, viewerID, id string) (*models.Tweet, error)
}

// UserGetter loads a user by username
type UserGetter interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// LoadTweet resolves the {id} URL parameter to a tweet, answering 404 when
// it does not exist
func LoadTweet(tweets TweetGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tweet, err := tweets.Get(r.Context(), GetUserID(r.Context()), chi.URLParam(r, "id"))
			if errors.Is(err, services.ErrNotFound) {
				RespondMessage(w, MsgTweetNotFound, http.StatusNotFound)
				return
			}
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("Failed to load tweet")
				RespondMessage(w, MsgServerError, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), tweetKey, tweet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TweetFrom returns the tweet loaded by LoadTweet
func TweetFrom(ctx context.Context) *models.Tweet {
	tweet, _ := ctx.Value(tweetKey).(*models.Tweet)
	return tweet
}

// RequireTweetOwner answers 403 unless the current user wrote the loaded
// tweet. It must run after LoadTweet.
func RequireTweetOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tweet := TweetFrom(r.Context())
		if tweet == nil || tweet.UserID != GetUserID(r.Context()) {
			RespondMessage(w, MsgForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadProfileUser resolves the {username} URL parameter to a user,
// answering 404 when it does not exist
func LoadProfileUser(users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
			if errors.Is(err, services.ErrNotFound) {
				RespondMessage(w, MsgUserNotFound, http.StatusNotFound)
				return
			}
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("Failed to load user")
				RespondMessage(w, MsgServerError, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), profileUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileUserFrom returns the user loaded by LoadProfileUser
func ProfileUserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(profileUserKey).(*models.User)
	return user
}

// RequireProfileOwner answers 403 unless the loaded profile belongs to the
// current user. It must run after LoadProfileUser.
func RequireProfileOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := ProfileUserFrom(r.Context())
		if user == nil || user.ID != GetUserID(r.Context()) {
			RespondMessage(w, MsgForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
