package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dailyquest-app/dailyquest-backend/internal/models"
	"github.com/dailyquest-app/dailyquest-backend/internal/store"
)

type UpdateProfileRequest struct {
	Category string `json:"category"`
	Level    string `json:"level"`
}

type ProfileResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// GetProfile returns the authenticated user's profile.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := userStore.FindUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Success: true, User: &user})
}

// UpdateProfile updates the user's quest category and level. The new
// preferences take effect at the next generation; today's batch is untouched.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "Category is required")
		return
	}
	if !models.ValidLevel(req.Level) {
		writeError(w, http.StatusBadRequest, "Level must be beginner, intermediate, or advanced")
		return
	}

	if err := userStore.UpdateProfile(r.Context(), userID, req.Category, req.Level); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	user, err := userStore.FindUser(r.Context(), userID)
	if err != nil {
		log.Printf("failed to reload user %s after profile update: %v", userID, err)
		writeJSON(w, http.StatusOK, ProfileResponse{Success: true, Message: "Profile updated"})
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Success: true,
		Message: "Profile updated",
		User:    &user,
	})
}
