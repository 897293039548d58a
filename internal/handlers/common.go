package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mini-twitter/internal/middleware"
	"mini-twitter/internal/views"

	"github.com/rs/zerolog/log"
)

const homeURL = "/tweets/home"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondJSON sends body as JSON
func respondJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// render writes an HTML page for the current user, answering 500 when the
// template fails
func render(w http.ResponseWriter, r *http.Request, renderer *views.Renderer, statusCode int, page string, data *views.Page) {
	if data.CurrentUser == nil {
		data.CurrentUser = middleware.CurrentUser(r.Context())
	}
	if err := renderer.Render(w, statusCode, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// queryInt reads an integer query parameter, falling back to def
func queryInt(r *http.Request, key string, def int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

// safeNext returns next when it is a path on this site, otherwise the home
// page. Control characters are rejected outright since browsers drop tabs
// and newlines before resolving a Location.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return homeURL
	}
	for i := 0; i < len(next); i++ {
		if next[i] < 0x20 || next[i] == 0x7f {
			return homeURL
		}
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return homeURL
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return homeURL
	}
	return next
}
