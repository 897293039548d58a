package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func post(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validSignup() url.Values {
	return url.Values{
		"username":  {"testuser"},
		"email":     {"testuser@example.com"},
		"password1": {"sak2ED@df#"},
		"password2": {"sak2ED@df#"},
	}
}

func TestSignupValid(t *testing.T) {
	errs := ParseSignup(post(validSignup())).Validate()
	assert.True(t, errs.Valid(), "%v", errs)
}

func TestSignupEmptyForm(t *testing.T) {
	errs := ParseSignup(post(url.Values{})).Validate()
	for _, field := range []string{"username", "email", "password1", "password2"} {
		assert.Equal(t, []string{MsgRequired}, errs.Get(field), field)
	}
}

func TestSignupRejections(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(url.Values)
		field string
		msg   string
	}{
		{"empty username", func(v url.Values) { v.Set("username", "") }, "username", MsgRequired},
		{"blank username", func(v url.Values) { v.Set("username", "   ") }, "username", MsgRequired},
		{"bad username", func(v url.Values) { v.Set("username", "has space") }, "username", MsgInvalidName},
		{"empty email", func(v url.Values) { v.Set("email", "") }, "email", MsgRequired},
		{"invalid email", func(v url.Values) { v.Set("email", "invalid_email") }, "email", MsgInvalidEmail},
		{"empty password", func(v url.Values) { v.Set("password1", ""); v.Set("password2", "") }, "password1", MsgRequired},
		{"too short", func(v url.Values) { v.Set("password1", "ak#fK1@"); v.Set("password2", "ak#fK1@") }, "password2", MsgPasswordTooShort},
		{"similar", func(v url.Values) { v.Set("password1", "testuser123"); v.Set("password2", "testuser123") }, "password2", MsgPasswordSimilar},
		{"numeric", func(v url.Values) { v.Set("password1", "1234567890"); v.Set("password2", "1234567890") }, "password2", MsgPasswordNumeric},
		{"mismatch", func(v url.Values) { v.Set("password1", "asdf!@#$1234"); v.Set("password2", "qwerq!@34^89") }, "password2", MsgPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validSignup()
			tt.edit(v)
			errs := ParseSignup(post(v)).Validate()
			assert.False(t, errs.Valid())
			assert.Contains(t, errs.Get(tt.field), tt.msg)
		})
	}
}

func TestLoginRequiresPassword(t *testing.T) {
	errs := ParseLogin(post(url.Values{"username": {"testuser"}})).Validate()
	assert.Equal(t, []string{MsgRequired}, errs.Get("password"))
	assert.Empty(t, errs.Get("username"))
}

func TestTweetLength(t *testing.T) {
	exact := strings.Repeat("あ", MaxTweetLength)
	assert.True(t, ParseTweet(post(url.Values{"body": {exact}})).Validate().Valid())

	errs := ParseTweet(post(url.Values{"body": {exact + "a"}})).Validate()
	assert.Equal(t, []string{"Ensure this value has at most 140 characters (it has 141)."}, errs.Get("body"))

	errs = ParseTweet(post(url.Values{"body": {"  \n "}})).Validate()
	assert.Equal(t, []string{MsgRequired}, errs.Get("body"))
}

func TestProfileForm(t *testing.T) {
	assert.True(t, ParseProfile(post(url.Values{"email": {"a@example.com"}, "bio": {"hi"}})).Validate().Valid())

	errs := ParseProfile(post(url.Values{"email": {"nope"}, "bio": {strings.Repeat("x", 161)}})).Validate()
	assert.Equal(t, []string{MsgInvalidEmail}, errs.Get("email"))
	assert.Len(t, errs.Get("bio"), 1)
}

func TestPasswordSimilarity(t *testing.T) {
	similar := []struct{ password, username string }{
		{"testuser123", "testuser"},
		{"TestUser!", "testuser"},
		{"johnsmith99", "john.smith"},
		{"Smith!!", "john_smith"},
	}
	for _, tt := range similar {
		assert.Contains(t, PasswordProblems(tt.password, tt.username), MsgPasswordSimilar, tt.password)
	}

	unrelated := []struct{ password, username string }{
		{"Secure#Pass99", "a"},
		{"mojo-rising-42", "jo"},
		{"Blimp!Castle7", "li"},
		{"sak2ED@df#", "testuser"},
	}
	for _, tt := range unrelated {
		assert.NotContains(t, PasswordProblems(tt.password, tt.username), MsgPasswordSimilar, tt.password)
	}
}

func TestTweetLimitMessage(t *testing.T) {
	errs := ParseTweet(post(url.Values{"body": {strings.Repeat("a", MaxTweetLength+5)}})).Validate()
	assert.Equal(t, []string{"Ensure this value has at most 140 characters (it has 145)."}, errs.Get("body"))
}
