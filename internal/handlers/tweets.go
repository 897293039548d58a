package handlers

import (
	"errors"
	"net/http"

	"mini-twitter/internal/forms"
	"mini-twitter/internal/middleware"
	"mini-twitter/internal/services"
	"mini-twitter/internal/views"

	"github.com/rs/zerolog/log"
)

// TweetHandler handles tweet pages
type TweetHandler struct {
	tweetService *services.TweetService
	views        *views.Renderer
}

// NewTweetHandler creates a new tweet handler
func NewTweetHandler(tweetService *services.TweetService, renderer *views.Renderer) *TweetHandler {
	return &TweetHandler{
		tweetService: tweetService,
		views:        renderer,
	}
}

// Home handles GET /tweets/home
func (h *TweetHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit, offset := services.FeedWindow(
		queryInt(r, "limit", services.DefaultFeedLimit),
		queryInt(r, "offset", 0),
	)

	tweets, total, err := h.tweetService.Feed(ctx, userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get feed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	render(w, r, h.views, http.StatusOK, views.PageHome, &views.Page{
		Tweets: tweets,
		Pager:  &views.Pager{Limit: limit, Offset: offset, Total: total},
	})
}

// CreatePage handles GET /tweets/create
func (h *TweetHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.views, http.StatusOK, views.PageCreate, &views.Page{Form: forms.TweetForm{}})
}

// Create handles POST /tweets/create
func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)
	form := forms.ParseTweet(r)

	errs := form.Validate()
	if errs.Valid() {
		_, err := h.tweetService.Create(ctx, user, form.Body)
		switch {
		case errors.Is(err, services.ErrInvalidTweet):
			errs.Add("body", err.Error())
		case err != nil:
			log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create tweet")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		default:
			http.Redirect(w, r, homeURL, http.StatusFound)
			return
		}
	}

	render(w, r, h.views, http.StatusOK, views.PageCreate, &views.Page{Form: form, Errors: errs})
}

// Detail handles GET /tweets/{id}
func (h *TweetHandler) Detail(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.views, http.StatusOK, views.PageDetail, &views.Page{Tweet: middleware.TweetFrom(r.Context())})
}

// Delete handles POST /tweets/{id}/delete
func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)
	tweet := middleware.TweetFrom(ctx)

	err := h.tweetService.Delete(ctx, user, tweet.ID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		middleware.RespondMessage(w, middleware.MsgTweetNotFound, http.StatusNotFound)
		return
	case errors.Is(err, services.ErrForbidden):
		middleware.RespondMessage(w, middleware.MsgForbidden, http.StatusForbidden)
		return
	case err != nil:
		log.Error().Err(err).Str("user_id", user.ID).Str("tweet_id", tweet.ID).Msg("Failed to delete tweet")
		middleware.RespondMessage(w, middleware.MsgServerError, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, homeURL, http.StatusFound)
}
