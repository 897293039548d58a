package forms

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MsgDuplicateUsername  = "A user with that username already exists."
	MsgPasswordMismatch   = "The two password fields didn't match."
	MsgPasswordTooShort   = "This password is too short. It must contain at least 8 characters."
	MsgPasswordNumeric    = "This password is entirely numeric."
	MsgPasswordSimilar    = "The password is too similar to the username."
	MsgInvalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

	minPasswordLength = 8
	maxSimilarity     = 0.7
)

var nonWord = regexp.MustCompile(`[\W_]+`)

// SignupForm is posted by /accounts/signup
type SignupForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// ParseSignup reads a SignupForm from a POST request
func ParseSignup(r *http.Request) SignupForm {
	return SignupForm{
		Username:  value(r, "username"),
		Email:     value(r, "email"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
}

// Validate checks required fields, formats and password strength. Password
// problems are reported on password2.
func (f SignupForm) Validate() Errors {
	errs := check(f)
	if f.Password1 == "" || f.Password2 == "" {
		return errs
	}
	if f.Password1 != f.Password2 {
		errs.Add("password2", MsgPasswordMismatch)
		return errs
	}
	for _, msg := range PasswordProblems(f.Password1, f.Username) {
		errs.Add("password2", msg)
	}
	return errs
}

// PasswordProblems lists the strength rules password breaks
func PasswordProblems(password, username string) []string {
	var problems []string
	if similarToUsername(password, username) {
		problems = append(problems, MsgPasswordSimilar)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, MsgPasswordTooShort)
	}
	if isNumeric(password) {
		problems = append(problems, MsgPasswordNumeric)
	}
	return problems
}

// similarToUsername compares password against the username and each of
// its word parts using a character-overlap ratio. Parts far shorter than
// the password are skipped.
func similarToUsername(password, username string) bool {
	if username == "" {
		return false
	}
	p := []rune(strings.ToLower(password))
	u := strings.ToLower(username)
	parts := append(nonWord.Split(u, -1), u)
	for _, part := range parts {
		v := []rune(part)
		if len(v) == 0 {
			continue
		}
		if len(p) >= 10*len(v) && float64(len(v)) < maxSimilarity/2*float64(len(p)) {
			continue
		}
		if overlapRatio(p, v) >= maxSimilarity {
			return true
		}
	}
	return false
}

// overlapRatio is 2*M/T where M counts the characters a and b share,
// with multiplicity, and T is their combined length
func overlapRatio(a, b []rune) float64 {
	avail := make(map[rune]int, len(b))
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(a)+len(b))
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// LoginForm is posted by /accounts/login
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next" validate:"-"`
}

// ParseLogin reads a LoginForm from a POST request
func ParseLogin(r *http.Request) LoginForm {
	return LoginForm{
		Username: value(r, "username"),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
}

// Validate checks that both credentials were given
func (f LoginForm) Validate() Errors {
	return check(f)
}

// ProfileForm is posted by /accounts/{username}/edit
type ProfileForm struct {
	Email string `form:"email" validate:"required,max=254,email"`
	Bio   string `form:"bio" validate:"max=160"`
}

// ParseProfile reads a ProfileForm from a POST request
func ParseProfile(r *http.Request) ProfileForm {
	return ProfileForm{
		Email: value(r, "email"),
		Bio:   value(r, "bio"),
	}
}

// Validate checks the email address and bio length
func (f ProfileForm) Validate() Errors {
	return check(f)
}
