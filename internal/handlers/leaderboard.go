package handlers

import (
	"net/http"
	"strconv"

	"github.com/dailyquest-app/dailyquest-backend/internal/models"
	"github.com/dailyquest-app/dailyquest-backend/internal/services"
)

const (
	leaderboardCacheKey     = "leaderboard:top"
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

type LeaderboardResponse struct {
	Success bool                      `json:"success"`
	Entries []models.LeaderboardEntry `json:"entries"`
}

// GetLeaderboard returns users ranked by points. Results are cached briefly
// in Redis and invalidated on quest completion.
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	// Only the default view is cached; custom limits hit the store.
	if limit == defaultLeaderboardLimit {
		var cached []models.LeaderboardEntry
		if hit, _ := cacheService.Get(r.Context(), leaderboardCacheKey, &cached); hit {
			writeJSON(w, http.StatusOK, LeaderboardResponse{Success: true, Entries: cached})
			return
		}
	}

	rows, err := userStore.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	entries := services.RankUsers(rows)
	if limit == defaultLeaderboardLimit {
		_ = cacheService.SetWithTTL(r.Context(), leaderboardCacheKey, entries, services.LeaderboardCacheTTL)
	}

	writeJSON(w, http.StatusOK, LeaderboardResponse{Success: true, Entries: entries})
}
