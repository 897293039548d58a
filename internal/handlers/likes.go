package handlers

import (
	"context"
	"errors"
	"net/http"

	"mini-twitter/internal/middleware"
	"mini-twitter/internal/models"
	"mini-twitter/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// LikeResponse is the body of a successful like or unlike
type LikeResponse struct {
	Message   string `json:"message"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

// LikeHandler handles like toggling
type LikeHandler struct {
	likeService *services.LikeService
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(likeService *services.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// Like handles POST /tweets/{id}/like
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true, h.likeService.Like)
}

// Unlike handles POST /tweets/{id}/unlike
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false, h.likeService.Unlike)
}

type likeFunc func(ctx context.Context, user *models.User, tweetID string) (int, error)

func (h *LikeHandler) toggle(w http.ResponseWriter, r *http.Request, liked bool, fn likeFunc) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)
	tweetID := chi.URLParam(r, "id")

	count, err := fn(ctx, user, tweetID)
	if errors.Is(err, services.ErrNotFound) {
		middleware.RespondMessage(w, middleware.MsgTweetNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", user.ID).
			Str("tweet_id", tweetID).
			Bool("liked", liked).
			Msg("Failed to toggle like")
		middleware.RespondMessage(w, middleware.MsgServerError, http.StatusInternalServerError)
		return
	}

	message := "Unliked."
	if liked {
		message = "Liked."
	}
	respondJSON(w, LikeResponse{Message: message, Liked: liked, LikeCount: count}, http.StatusOK)
}
