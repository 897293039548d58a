package forms

import (
	"fmt"
	"net/http"
	"unicode/utf8"
)

// MaxTweetLength is the longest body accepted, counted in characters
const MaxTweetLength = 140

// TweetForm is posted by /tweets/create
type TweetForm struct {
	Body string `form:"body" validate:"required"`
}

// ParseTweet reads a TweetForm from a POST request
func ParseTweet(r *http.Request) TweetForm {
	return TweetForm{Body: value(r, "body")}
}

// Validate checks the body is present and short enough
func (f TweetForm) Validate() Errors {
	errs := check(f)
	if n := utf8.RuneCountInString(f.Body); n > MaxTweetLength {
		errs.Add("body", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", MaxTweetLength, n))
	}
	return errs
}
