package models

import (
	"time"

	"github.com/google/uuid"
)

// Skill levels a user can pick for their daily quests.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// ValidLevel reports whether level is one of the supported skill tiers.
func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`

	// Quest profile preferences
	MainCategory string `json:"main_category"`
	UserLevel    string `json:"user_level"`

	Points    int    `json:"points"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
