package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dailyquest-app/dailyquest-backend/internal/services"
)

type HistoryResponse struct {
	Success     bool                       `json:"success"`
	Completions []services.QuestCompletion `json:"completions"`
	HasMore     bool                       `json:"has_more"`
}

// GetQuestHistory returns the caller's completed-quest log, newest first.
// Supports cursor pagination via ?before=<RFC3339> and ?limit=<n>.
func GetQuestHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid before cursor")
			return
		}
		before = &t
	}

	var limit int64 = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			limit = n
		}
	}

	completions, hasMore, err := services.LoadCompletions(r.Context(), userID.String(), before, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load quest history")
		return
	}
	if completions == nil {
		completions = []services.QuestCompletion{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Success:     true,
		Completions: completions,
		HasMore:     hasMore,
	})
}
