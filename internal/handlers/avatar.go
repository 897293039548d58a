package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mini-twitter/internal/middleware"
	"mini-twitter/internal/services"

	"github.com/rs/zerolog/log"
)

// AvatarHandler handles avatar uploads
type AvatarHandler struct {
	avatarService *services.AvatarService
}

// NewAvatarHandler creates a new avatar handler. A nil service disables
// uploads.
func NewAvatarHandler(avatarService *services.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatarService: avatarService}
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	ContentType string `json:"content_type"`
}

// Upload handles POST /accounts/{username}/avatar
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.avatarService == nil {
		respondError(w, "Avatar uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ContentType == "" {
		req.ContentType = "image/jpeg" // Default
	}

	response, err := h.avatarService.GetUploadURL(ctx, userID, req.ContentType)
	if errors.Is(err, services.ErrUnsupportedImage) {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("content_type", req.ContentType).
			Msg("Failed to generate pre-signed URL")
		respondError(w, "Failed to generate upload URL", http.StatusInternalServerError)
		return
	}

	respondJSON(w, response, http.StatusOK)
}

// ConfirmRequest names an uploaded avatar object
type ConfirmRequest struct {
	Key string `json:"key"`
}

// ConfirmResponse carries the avatar URL now shown on the profile
type ConfirmResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// Confirm handles POST /accounts/{username}/avatar/confirm
func (h *AvatarHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h.avatarService == nil {
		respondError(w, "Avatar uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	avatarURL, err := h.avatarService.ConfirmUpload(ctx, userID, req.Key)
	switch {
	case errors.Is(err, services.ErrInvalidAvatarKey), errors.Is(err, services.ErrAvatarNotUploaded):
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		log.Error().Err(err).Str("user_id", userID).Str("key", req.Key).Msg("Failed to confirm avatar")
		respondError(w, "Failed to confirm avatar", http.StatusInternalServerError)
		return
	}

	respondJSON(w, ConfirmResponse{AvatarURL: avatarURL}, http.StatusOK)
}
