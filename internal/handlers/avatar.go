package handlers

import (
	"net/http"
)

type AvatarResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadAvatar uploads a profile image to Cloudinary and stores its URL on
// the user. The avatar shows up on the profile and the leaderboard.
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if cloudinaryService == nil {
		writeError(w, http.StatusServiceUnavailable, "Avatar uploads are not available")
		return
	}

	// Max 5MB for an avatar image
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	_, fileHeader, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No avatar file provided")
		return
	}

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), fileHeader, "dailyquest/avatars")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	if err := userStore.UpdateAvatar(r.Context(), userID, url); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save avatar")
		return
	}

	writeJSON(w, http.StatusOK, AvatarResponse{
		Success: true,
		Message: "Avatar updated",
		URL:     url,
	})
}
