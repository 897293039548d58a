package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"mini-twitter/internal/forms"
	"mini-twitter/internal/middleware"
	"mini-twitter/internal/services"
	"mini-twitter/internal/views"

	"github.com/rs/zerolog/log"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AccountHandler handles signup, login, logout and profile pages
type AccountHandler struct {
	userService    *services.UserService
	sessionService *services.SessionService
	views          *views.Renderer
	cookie         CookieConfig
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	userService *services.UserService,
	sessionService *services.SessionService,
	renderer *views.Renderer,
	cookie CookieConfig,
) *AccountHandler {
	return &AccountHandler{
		userService:    userService,
		sessionService: sessionService,
		views:          renderer,
		cookie:         cookie,
	}
}

// SignupPage handles GET /accounts/signup
func (h *AccountHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.views, http.StatusOK, views.PageSignup, &views.Page{Form: forms.SignupForm{}})
}

// Signup handles POST /accounts/signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.ParseSignup(r)

	errs := form.Validate()
	if errs.Valid() {
		user, err := h.userService.Signup(ctx, form.Username, form.Email, form.Password1)
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			errs.Add("username", forms.MsgDuplicateUsername)
		case err != nil:
			log.Error().Err(err).Str("username", form.Username).Msg("Failed to sign up user")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		default:
			if !h.startSession(w, r, user.ID) {
				return
			}
			http.Redirect(w, r, homeURL, http.StatusFound)
			return
		}
	}

	render(w, r, h.views, http.StatusOK, views.PageSignup, &views.Page{Form: form, Errors: errs})
}

// LoginPage handles GET /accounts/login
func (h *AccountHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, safeNext(next), http.StatusFound)
		return
	}
	render(w, r, h.views, http.StatusOK, views.PageLogin, &views.Page{Form: forms.LoginForm{}, Next: next})
}

// Login handles POST /accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.ParseLogin(r)

	errs := form.Validate()
	if errs.Valid() {
		user, err := h.userService.Authenticate(ctx, form.Username, form.Password)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Info().Str("username", form.Username).Msg("Login failed")
			errs.Add("", forms.MsgInvalidCredentials)
		case err != nil:
			log.Error().Err(err).Str("username", form.Username).Msg("Failed to authenticate user")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		default:
			if !h.startSession(w, r, user.ID) {
				return
			}
			log.Info().Str("user_id", user.ID).Msg("User logged in")
			http.Redirect(w, r, safeNext(form.Next), http.StatusFound)
			return
		}
	}

	render(w, r, h.views, http.StatusOK, views.PageLogin, &views.Page{Form: form, Errors: errs, Next: form.Next})
}

// Logout handles POST /accounts/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r, h.cookie.Name); token != "" {
		if err := h.sessionService.Destroy(r.Context(), token); err != nil {
			log.Error().Err(err).Msg("Failed to destroy session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, middleware.LoginURL, http.StatusFound)
}

// startSession creates a session for userID and sets the cookie. It
// reports whether the response may continue.
func (h *AccountHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) bool {
	token, err := h.sessionService.Create(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}

	ttl := h.sessionService.TTL()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

// Profile handles GET /accounts/{username}
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := middleware.CurrentUser(ctx)
	user := middleware.ProfileUserFrom(ctx)

	profile, err := h.userService.ProfileOf(ctx, viewer, user)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to load profile")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	render(w, r, h.views, http.StatusOK, views.PageProfile, &views.Page{Profile: profile})
}

// EditPage handles GET /accounts/{username}/edit
func (h *AccountHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.ProfileUserFrom(r.Context())
	form := forms.ProfileForm{Email: user.Email, Bio: user.Bio}
	render(w, r, h.views, http.StatusOK, views.PageProfileEdit, &views.Page{Form: form, TargetUser: user})
}

// Edit handles POST /accounts/{username}/edit
func (h *AccountHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.ProfileUserFrom(ctx)
	form := forms.ParseProfile(r)

	errs := form.Validate()
	if !errs.Valid() {
		render(w, r, h.views, http.StatusOK, views.PageProfileEdit, &views.Page{Form: form, Errors: errs, TargetUser: user})
		return
	}

	if err := h.userService.UpdateProfile(ctx, user, form.Email, form.Bio); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update profile")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("Profile updated")
	http.Redirect(w, r, "/accounts/"+url.PathEscape(user.Username), http.StatusFound)
}

// DeviceTokenRequest is the body of POST /accounts/device-token
type DeviceTokenRequest struct {
	DeviceToken string `json:"device_token"`
}

// DeviceToken handles POST /accounts/device-token. An empty token
// unregisters the device.
func (h *AccountHandler) DeviceToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req DeviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.SetPushToken(ctx, userID, req.DeviceToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to save device token")
		respondError(w, "Failed to save device token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, middleware.MessageResponse{Message: "Device token saved."}, http.StatusOK)
}
