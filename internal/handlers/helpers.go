package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dailyquest-app/dailyquest-backend/internal/config"
	"github.com/dailyquest-app/dailyquest-backend/internal/services"
	"github.com/dailyquest-app/dailyquest-backend/internal/store"
)

// Handler singletons, set once at startup via Init and never mutated
// afterwards.
var (
	userStore         *store.Store
	questService      *services.QuestService
	cacheService      *services.CacheService
	cloudinaryService *services.CloudinaryService
)

// Init wires the handlers to the core components constructed in main.
func Init(s *store.Store, qs *services.QuestService) {
	userStore = s
	questService = qs
	cacheService = &services.CacheService{}
}

// InitCloudinaryService enables avatar uploads when credentials are present.
func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}
	return ""
}

// requireAuth validates the session and returns the authenticated user's ID.
// Returns (uuid.Nil, false) when not authenticated.
func requireAuth(r *http.Request) (uuid.UUID, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return uuid.Nil, false
	}
	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return uuid.Nil, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
