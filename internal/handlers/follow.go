package handlers

import (
	"context"
	"errors"
	"net/http"

	"mini-twitter/internal/middleware"
	"mini-twitter/internal/models"
	"mini-twitter/internal/services"
	"mini-twitter/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MsgSelfFollow is returned when a user tries to follow or unfollow themself
const MsgSelfFollow = "This operation cannot be performed on yourself."

// FollowHandler handles follow-graph HTTP requests
type FollowHandler struct {
	followService *services.FollowService
	views         *views.Renderer
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(followService *services.FollowService, renderer *views.Renderer) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		views:         renderer,
	}
}

// Follow handles POST /accounts/{username}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "follow", h.followService.Follow)
}

// Unfollow handles POST /accounts/{username}/unfollow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "unfollow", h.followService.Unfollow)
}

type followFunc func(ctx context.Context, actor *models.User, username string) (*models.User, error)

func (h *FollowHandler) change(w http.ResponseWriter, r *http.Request, action string, fn followFunc) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)
	username := chi.URLParam(r, "username")

	_, err := fn(ctx, user, username)
	switch {
	case errors.Is(err, services.ErrNotFound):
		middleware.RespondMessage(w, middleware.MsgUserNotFound, http.StatusNotFound)
		return
	case errors.Is(err, services.ErrSelfFollow):
		middleware.RespondMessage(w, MsgSelfFollow, http.StatusBadRequest)
		return
	case err != nil:
		log.Error().
			Err(err).
			Str("user_id", user.ID).
			Str("username", username).
			Str("action", action).
			Msg("Failed to update friendship")
		middleware.RespondMessage(w, middleware.MsgServerError, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, homeURL, http.StatusFound)
}

// Following handles GET /accounts/{username}/following
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, views.PageFollowingList, h.followService.Following)
}

// Followers handles GET /accounts/{username}/followers
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, views.PageFollowerList, h.followService.Followers)
}

type listFunc func(ctx context.Context, user *models.User) ([]*models.FollowEntry, error)

func (h *FollowHandler) list(w http.ResponseWriter, r *http.Request, page string, fn listFunc) {
	ctx := r.Context()
	target := middleware.ProfileUserFrom(ctx)

	entries, err := fn(ctx, target)
	if err != nil {
		log.Error().Err(err).Str("user_id", target.ID).Str("page", page).Msg("Failed to list friendships")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	render(w, r, h.views, http.StatusOK, page, &views.Page{TargetUser: target, Entries: entries})
}
