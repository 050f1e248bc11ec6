package models

import (
	"time"

	"github.com/google/uuid"
)

// Challenge is a daily quest owned by a single user. Challenges are only
// meaningful for the date they were assigned; completing one deletes the row.
type Challenge struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	DateAssigned time.Time `json:"date_assigned"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuestDraft is a generated quest before it is persisted: the shape the
// provider returns inside the "quests" array.
type QuestDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LeaderboardRow is the raw per-user score row read from storage.
type LeaderboardRow struct {
	Username  string `json:"username"`
	Points    int    `json:"points"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// LeaderboardEntry is a ranked row served to clients.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	Points    int    `json:"points"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
