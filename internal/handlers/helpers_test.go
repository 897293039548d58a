package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mini-twitter/internal/auth"
	"mini-twitter/internal/cache"
	"mini-twitter/internal/models"
	"mini-twitter/internal/repository"
	"mini-twitter/internal/services"
	"mini-twitter/internal/views"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	cookieName   = "sessionid"
	testPassword = "sak2ED@df#"
)

var fastParams = &auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testApp struct {
	db       *repository.MockDB
	store    *cache.MemorySessionStore
	hub      *services.WSHub
	users    *services.UserService
	sessions *services.SessionService
	tweets   *services.TweetService
	router   http.Handler
}

// fakeS3 signs every PUT and reports every object as present
type fakeS3 struct{}

func (fakeS3) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + *params.Key, Method: http.MethodPut}, nil
}

func (fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, nil
}

func newTestApp(t *testing.T, withAvatars bool) *testApp {
	t.Helper()
	db := repository.NewMockDB()
	store := cache.NewMemorySessionStore()
	hub := services.NewWSHub()
	notifier := services.NewNotifier(hub, nil, db.Users(), db.FriendShips())

	renderer, err := views.NewRenderer()
	require.NoError(t, err)

	app := &testApp{
		db:       db,
		store:    store,
		hub:      hub,
		users:    services.NewUserService(db.Users(), db.FriendShips(), db.Tweets(), fastParams),
		sessions: services.NewSessionService(store, "test-secret", time.Hour),
		tweets:   services.NewTweetService(db.Tweets(), notifier),
	}

	deps := Deps{
		Users:    app.users,
		Sessions: app.sessions,
		Follows:  services.NewFollowService(db.FriendShips(), db.Users(), notifier),
		Tweets:   app.tweets,
		Likes:    services.NewLikeService(db.Likes(), db.Tweets(), notifier),
		Hub:      hub,
		Views:    renderer,
		Cookie:   CookieConfig{Name: cookieName},
		Logger:   zerolog.Nop(),
	}
	if withAvatars {
		deps.Avatars = services.NewAvatarServiceWithClients(fakeS3{}, fakeS3{}, db.Users(), "bucket", "https://cdn.example.com")
	}
	app.router = NewRouter(deps)
	return app
}

// signup creates a user and returns it with a logged-in session cookie
func (a *testApp) signup(t *testing.T, username string) (*models.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	user, err := a.users.Signup(ctx, username, username+"@example.com", testPassword)
	require.NoError(t, err)
	token, err := a.sessions.Create(ctx, user.ID)
	require.NoError(t, err)
	return user, &http.Cookie{Name: cookieName, Value: token}
}

func (a *testApp) tweet(t *testing.T, user *models.User, body string) *models.Tweet {
	t.Helper()
	tweet, err := a.tweets.Create(context.Background(), user, body)
	require.NoError(t, err)
	return tweet
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (a *testApp) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookie)
}

func (a *testApp) postJSON(path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, cookie)
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}
