package services

import (
	"sort"

	"github.com/dailyquest-app/dailyquest-backend/internal/models"
)

// RankUsers turns raw score rows into ranked leaderboard entries: points
// descending, ties broken by username, ranks assigned 1..n. The store already
// orders its query this way; sorting again here keeps the property
// independent of which store produced the rows.
func RankUsers(rows []models.LeaderboardRow) []models.LeaderboardEntry {
	sorted := make([]models.LeaderboardRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].Username < sorted[j].Username
	})

	entries := make([]models.LeaderboardEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = models.LeaderboardEntry{
			Rank:      i + 1,
			Username:  r.Username,
			Points:    r.Points,
			AvatarURL: r.AvatarURL,
		}
	}
	return entries
}
