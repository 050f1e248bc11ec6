package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyquest-app/dailyquest-backend/internal/models"
)

func TestRankUsers_OrdersByPointsDescending(t *testing.T) {
	t.Parallel()

	rows := []models.LeaderboardRow{
		{Username: "alice", Points: 50},
		{Username: "bob", Points: 10},
		{Username: "carol", Points: 30},
	}

	ranked := RankUsers(rows)
	require.Len(t, ranked, 3)

	assert.Equal(t, "alice", ranked[0].Username)
	assert.Equal(t, "carol", ranked[1].Username)
	assert.Equal(t, "bob", ranked[2].Username)

	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestRankUsers_TiesBreakByUsername(t *testing.T) {
	t.Parallel()

	rows := []models.LeaderboardRow{
		{Username: "zed", Points: 40},
		{Username: "amy", Points: 40},
	}

	ranked := RankUsers(rows)
	require.Len(t, ranked, 2)
	assert.Equal(t, "amy", ranked[0].Username)
	assert.Equal(t, "zed", ranked[1].Username)
}

func TestRankUsers_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	rows := []models.LeaderboardRow{
		{Username: "bob", Points: 10},
		{Username: "alice", Points: 50},
	}

	_ = RankUsers(rows)
	assert.Equal(t, "bob", rows[0].Username)
}

func TestRankUsers_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RankUsers(nil))
}
