package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"mini-twitter/internal/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type contextKey string

const (
	userKey        contextKey = "user"
	tweetKey       contextKey = "tweet"
	profileUserKey contextKey = "profile_user"
)

// LoginURL is where anonymous visitors of protected pages are sent
const LoginURL = "/accounts/login"

// SessionResolver maps a session token to a user ID
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// UserLoader loads a user by ID
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionAuth attaches the logged-in user to the request context. The
// session token is read from the session cookie or, for API clients, from
// an "Authorization: Bearer" header. Requests without a valid session pass
// through anonymously.
func SessionAuth(sessions SessionResolver, users UserLoader, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("Ignoring invalid session")
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				hlog.FromRequest(r).Warn().Err(err).Str("user_id", userID).Msg("Session user not found")
				next.ServeHTTP(w, r)
				return
			}

			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", user.ID)
			})
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// SessionToken extracts the session token from the cookie or the
// Authorization header
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// RequireLogin redirects anonymous requests to the login page, carrying
// the requested path in the next parameter
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			target := LoginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the logged-in user, or nil for anonymous requests
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	if user := CurrentUser(ctx); user != nil {
		return user.ID
	}
	return ""
}
