package handlers

import (
	"net/http"

	"mini-twitter/internal/middleware"
	"mini-twitter/internal/services"
	"mini-twitter/internal/views"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Deps holds everything the HTTP layer needs
type Deps struct {
	Users    *services.UserService
	Sessions *services.SessionService
	Follows  *services.FollowService
	Tweets   *services.TweetService
	Likes    *services.LikeService
	// Avatars is optional; uploads answer 503 without it.
	Avatars *services.AvatarService
	Hub     *services.WSHub
	Views   *views.Renderer
	Cookie  CookieConfig
	Logger  zerolog.Logger
}

// NewRouter wires handlers and guards into a chi router
func NewRouter(d Deps) http.Handler {
	accountHandler := NewAccountHandler(d.Users, d.Sessions, d.Views, d.Cookie)
	followHandler := NewFollowHandler(d.Follows, d.Views)
	tweetHandler := NewTweetHandler(d.Tweets, d.Views)
	likeHandler := NewLikeHandler(d.Likes)
	avatarHandler := NewAvatarHandler(d.Avatars)
	wsHandler := NewWebSocketHandler(d.Hub)

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)

	r.Handle("/static/*", views.Static())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, homeURL, http.StatusFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(d.Sessions, d.Users, d.Cookie.Name))

		r.Route("/accounts", func(r chi.Router) {
			// Public routes
			r.Get("/signup", accountHandler.SignupPage)
			r.Post("/signup", accountHandler.Signup)
			r.Get("/login", accountHandler.LoginPage)
			r.Post("/login", accountHandler.Login)
			r.Post("/logout", accountHandler.Logout)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireLogin)
				r.Post("/device-token", accountHandler.DeviceToken)

				r.Route("/{username}", func(r chi.Router) {
					r.Post("/follow", followHandler.Follow)
					r.Post("/unfollow", followHandler.Unfollow)

					r.Group(func(r chi.Router) {
						r.Use(middleware.LoadProfileUser(d.Users))
						r.Get("/", accountHandler.Profile)
						r.Get("/following", followHandler.Following)
						r.Get("/followers", followHandler.Followers)

						r.Group(func(r chi.Router) {
							r.Use(middleware.RequireProfileOwner)
							r.Get("/edit", accountHandler.EditPage)
							r.Post("/edit", accountHandler.Edit)
							r.Post("/avatar", avatarHandler.Upload)
							r.Post("/avatar/confirm", avatarHandler.Confirm)
						})
					})
				})
			})
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Get("/home", tweetHandler.Home)
			r.Get("/create", tweetHandler.CreatePage)
			r.Post("/create", tweetHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/like", likeHandler.Like)
				r.Post("/unlike", likeHandler.Unlike)

				r.Group(func(r chi.Router) {
					r.Use(middleware.LoadTweet(d.Tweets))
					r.Get("/", tweetHandler.Detail)
					r.With(middleware.RequireTweetOwner).Post("/delete", tweetHandler.Delete)
				})
			})
		})

		// WebSocket route
		r.Get("/ws", wsHandler.HandleWebSocket)
	})

	return r
}
