package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mini-twitter/internal/models"
	"mini-twitter/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions map[string]string

func (s stubSessions) Resolve(ctx context.Context, token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", services.ErrInvalidSession
}

type stubUsers map[string]*models.User

func (s stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("get user: %w", services.ErrNotFound)
}

func (s stubUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range s {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("get user by username: %w", services.ErrNotFound)
}

type stubTweets map[string]*models.Tweet

func (s stubTweets) Get(ctx context.Context, viewerID, id string) (*models.Tweet, error) {
	if id == "broken" {
		return nil, errors.New("connection reset")
	}
	if t, ok := s[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("get tweet: %w", services.ErrNotFound)
}

var (
	alice = &models.User{ID: "u1", Username: "alice"}
	bob   = &models.User{ID: "u2", Username: "bob"}
	users = stubUsers{alice.ID: alice, bob.ID: bob}
)

func whoami(w http.ResponseWriter, r *http.Request) {
	if user := CurrentUser(r.Context()); user != nil {
		w.Write([]byte(user.Username))
		return
	}
	w.Write([]byte("anonymous"))
}

func TestSessionAuth(t *testing.T) {
	h := SessionAuth(stubSessions{"good": alice.ID, "orphan": "gone"}, users, "sessionid")(http.HandlerFunc(whoami))

	tests := []struct {
		name string
		prep func(*http.Request)
		want string
	}{
		{"no token", func(*http.Request) {}, "anonymous"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sessionid", Value: "good"}) }, "alice"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, "alice"},
		{"bad token", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sessionid", Value: "bad"}) }, "anonymous"},
		{"deleted user", func(r *http.Request) { r.Header.Set("Authorization", "Bearer orphan") }, "anonymous"},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "good") }, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prep(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRequireLogin(t *testing.T) {
	h := RequireLogin(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/tweets/create?x=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/accounts/login?next=%2Ftweets%2Fcreate%3Fx%3D1", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/tweets/create", nil)
	req = req.WithContext(WithUser(req.Context(), alice))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func tweetRouter(viewer *models.User) http.Handler {
	tweets := stubTweets{"t1": {ID: "t1", UserID: alice.ID, Body: "hi"}}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if viewer != nil {
				r = r.WithContext(WithUser(r.Context(), viewer))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.With(LoadTweet(tweets)).Get("/tweets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(TweetFrom(r.Context()).Body))
	})
	r.With(LoadTweet(tweets), RequireTweetOwner).Post("/tweets/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(LoadProfileUser(users)).Get("/accounts/{username}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ProfileUserFrom(r.Context()).ID))
	})
	r.With(LoadProfileUser(users), RequireProfileOwner).Post("/accounts/{username}/edit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestTweetGuards(t *testing.T) {
	asAlice, asBob := tweetRouter(alice), tweetRouter(bob)

	rec := serve(asAlice, http.MethodGet, "/tweets/t1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())

	rec = serve(asAlice, http.MethodGet, "/tweets/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgTweetNotFound, message(t, rec))

	rec = serve(asAlice, http.MethodGet, "/tweets/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	assert.Equal(t, http.StatusNoContent, serve(asAlice, http.MethodPost, "/tweets/t1/delete").Code)

	rec = serve(asBob, http.MethodPost, "/tweets/t1/delete")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, MsgForbidden, message(t, rec))

	assert.Equal(t, http.StatusNotFound, serve(asBob, http.MethodPost, "/tweets/missing/delete").Code)
}

func TestProfileGuards(t *testing.T) {
	asAlice, asBob := tweetRouter(alice), tweetRouter(bob)

	rec := serve(asBob, http.MethodGet, "/accounts/alice")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice.ID, rec.Body.String())

	rec = serve(asBob, http.MethodGet, "/accounts/nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgUserNotFound, message(t, rec))

	assert.Equal(t, http.StatusNoContent, serve(asAlice, http.MethodPost, "/accounts/alice/edit").Code)
	assert.Equal(t, http.StatusForbidden, serve(asBob, http.MethodPost, "/accounts/alice/edit").Code)
}
