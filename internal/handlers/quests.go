package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dailyquest-app/dailyquest-backend/internal/models"
	"github.com/dailyquest-app/dailyquest-backend/internal/services"
	"github.com/dailyquest-app/dailyquest-backend/internal/store"
)

// GenerationNotice is shown on the dashboard when quest generation fails.
const GenerationNotice = "We couldn't generate new quests right now."

type TodaysQuestsResponse struct {
	Success bool               `json:"success"`
	Quests  []models.Challenge `json:"quests"`
	Notice  string             `json:"notice,omitempty"`
}

type CompleteQuestRequest struct {
	ChallengeID string `json:"challenge_id"`
}

type CompleteQuestResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PointsAwarded int    `json:"points_awarded,omitempty"`
	TotalPoints   int    `json:"total_points,omitempty"`
}

// GetTodaysQuests is the dashboard source: it returns the authenticated
// user's quests for the current date, generating a fresh batch on a miss.
// Generation failures degrade to an empty list plus a notice; the page always
// renders.
func GetTodaysQuests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := userStore.FindUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Account no longer exists")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// The handler supplies "today"; the core never reads the clock itself.
	today := time.Now().UTC()

	quests, err := questService.EnsureTodaysQuests(r.Context(), user, today)
	if err != nil {
		if services.IsGenerationError(err) {
			log.Printf("quest generation failed for user %s: %v", user.ID, err)
			writeJSON(w, http.StatusOK, TodaysQuestsResponse{
				Success: true,
				Quests:  []models.Challenge{},
				Notice:  GenerationNotice,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load quests")
		return
	}
	if quests == nil {
		quests = []models.Challenge{}
	}

	writeJSON(w, http.StatusOK, TodaysQuestsResponse{
		Success: true,
		Quests:  quests,
	})
}

// CompleteQuest awards points for a finished challenge and removes it.
// Completing an already-completed challenge is a 404, never a double award.
func CompleteQuest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CompleteQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	challengeID, err := uuid.Parse(req.ChallengeID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	completed, totalPoints, err := questService.CompleteQuest(r.Context(), userID, challengeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, CompleteQuestResponse{
				Success: false,
				Message: "Challenge not found or already completed",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to complete quest")
		return
	}

	// Broadcast the score change and drop the cached leaderboard. Both are
	// best-effort; the completion has already committed.
	user, userErr := userStore.FindUser(r.Context(), userID)
	if userErr == nil {
		if err := services.PublishLeaderboardEvent(r.Context(), services.LeaderboardEvent{
			Type:       services.EventTypeScoreChange,
			Username:   user.Username,
			Points:     totalPoints,
			AvatarURL:  user.AvatarURL,
			QuestTitle: completed.Title,
		}); err != nil {
			log.Printf("failed to publish leaderboard event: %v", err)
		}
	}
	_ = cacheService.Delete(r.Context(), leaderboardCacheKey)

	writeJSON(w, http.StatusOK, CompleteQuestResponse{
		Success:       true,
		Message:       "Quest completed!",
		PointsAwarded: services.CompletionPoints,
		TotalPoints:   totalPoints,
	})
}
