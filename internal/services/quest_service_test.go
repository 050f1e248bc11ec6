package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyquest-app/dailyquest-backend/internal/generator"
	"github.com/dailyquest-app/dailyquest-backend/internal/models"
	"github.com/dailyquest-app/dailyquest-backend/internal/store"
)

type fakeQuestStore struct {
	challenges  []models.Challenge
	insertCalls int
	findErr     error
	insertErr   error

	completed    map[uuid.UUID]bool
	points       int
	completeErr  error
	completedIDs []uuid.UUID
}

func (f *fakeQuestStore) FindTodaysChallenges(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.Challenge, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]models.Challenge, 0, len(f.challenges))
	for _, c := range f.challenges {
		if c.UserID == userID && c.DateAssigned.Equal(day.Truncate(24*time.Hour)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeQuestStore) InsertChallenges(ctx context.Context, userID uuid.UUID, category string, day time.Time, batch []models.QuestDraft) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.insertCalls++
	for _, d := range batch {
		f.challenges = append(f.challenges, models.Challenge{
			ID:           uuid.New(),
			UserID:       userID,
			Title:        d.Title,
			Description:  d.Description,
			Category:     category,
			DateAssigned: day.Truncate(24 * time.Hour),
		})
	}
	return nil
}

func (f *fakeQuestStore) CompleteChallenge(ctx context.Context, challengeID, userID uuid.UUID, points int) (models.Challenge, int, error) {
	if f.completeErr != nil {
		return models.Challenge{}, 0, f.completeErr
	}
	if f.completed == nil {
		f.completed = make(map[uuid.UUID]bool)
	}
	for i, c := range f.challenges {
		if c.ID == challengeID && c.UserID == userID && !f.completed[challengeID] {
			f.completed[challengeID] = true
			f.completedIDs = append(f.completedIDs, challengeID)
			f.challenges = append(f.challenges[:i], f.challenges[i+1:]...)
			f.points += points
			return c, f.points, nil
		}
	}
	return models.Challenge{}, 0, store.ErrNotFound
}

type fakeGenerator struct {
	batch []models.QuestDraft
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, category, level string) ([]models.QuestDraft, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

type fakeRecorder struct {
	recorded []QuestCompletion
}

func (f *fakeRecorder) RecordCompletionAsync(c QuestCompletion) {
	f.recorded = append(f.recorded, c)
}

func today() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func testUser() models.User {
	return models.User{
		ID:           uuid.New(),
		Username:     "alice",
		MainCategory: "fitness",
		UserLevel:    models.LevelBeginner,
	}
}

func TestEnsureTodaysQuests_GeneratesAndPersistsOnFirstCall(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{batch: []models.QuestDraft{
		{Title: "Walk 20 minutes", Description: "Take a brisk walk outside"},
		{Title: "Stretch", Description: "5 minutes of stretching"},
	}}
	svc := NewQuestService(st, gen, nil)
	user := testUser()

	quests, err := svc.EnsureTodaysQuests(context.Background(), user, today())
	require.NoError(t, err)
	require.Len(t, quests, 2)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, st.insertCalls)
	assert.Equal(t, "Walk 20 minutes", quests[0].Title)
	assert.Equal(t, "fitness", quests[0].Category)
}

func TestEnsureTodaysQuests_IdempotentWithinSameDay(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{batch: []models.QuestDraft{{Title: "T", Description: "D"}}}
	svc := NewQuestService(st, gen, nil)
	user := testUser()

	first, err := svc.EnsureTodaysQuests(context.Background(), user, today())
	require.NoError(t, err)

	second, err := svc.EnsureTodaysQuests(context.Background(), user, today())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls, "generator must not run again once a batch exists")
	assert.Equal(t, 1, st.insertCalls)
}

func TestEnsureTodaysQuests_NewDayGeneratesFreshBatch(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{batch: []models.QuestDraft{{Title: "T", Description: "D"}}}
	svc := NewQuestService(st, gen, nil)
	user := testUser()

	_, err := svc.EnsureTodaysQuests(context.Background(), user, today())
	require.NoError(t, err)

	tomorrow := today().AddDate(0, 0, 1)
	quests, err := svc.EnsureTodaysQuests(context.Background(), user, tomorrow)
	require.NoError(t, err)

	assert.Len(t, quests, 1)
	assert.Equal(t, 2, gen.calls)
}

func TestEnsureTodaysQuests_ProviderFailureLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{err: generator.ErrProvider}
	svc := NewQuestService(st, gen, nil)
	user := testUser()

	quests, err := svc.EnsureTodaysQuests(context.Background(), user, today())
	assert.True(t, IsGenerationError(err))
	assert.NotNil(t, quests)
	assert.Empty(t, quests)
	assert.Zero(t, st.insertCalls, "a failed generation must not persist anything")

	// The next call re-attempts from scratch; failure is never memoized.
	gen.err = nil
	gen.batch = []models.QuestDraft{{Title: "T", Description: "D"}}
	quests, err = svc.EnsureTodaysQuests(context.Background(), user, today())
	require.NoError(t, err)
	assert.Len(t, quests, 1)
	assert.Equal(t, 2, gen.calls)
}

func TestEnsureTodaysQuests_MalformedResponseIsGenerationError(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{err: generator.ErrMalformedResponse}
	svc := NewQuestService(st, gen, nil)

	quests, err := svc.EnsureTodaysQuests(context.Background(), testUser(), today())
	assert.True(t, IsGenerationError(err))
	assert.Empty(t, quests)
	assert.Zero(t, st.insertCalls)
}

func TestEnsureTodaysQuests_EmptyBatchIsSuccessWithoutInsert(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{batch: []models.QuestDraft{}}
	svc := NewQuestService(st, gen, nil)

	quests, err := svc.EnsureTodaysQuests(context.Background(), testUser(), today())
	require.NoError(t, err)
	assert.Empty(t, quests)
	assert.Zero(t, st.insertCalls)
}

func TestCompleteQuest_AwardsPointsAndRecords(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{batch: []models.QuestDraft{{Title: "Read", Description: "Read a chapter"}}}
	rec := &fakeRecorder{}
	svc := NewQuestService(st, gen, rec)
	user := testUser()

	quests, err := svc.EnsureTodaysQuests(context.Background(), user, today())
	require.NoError(t, err)
	require.Len(t, quests, 1)

	completed, total, err := svc.CompleteQuest(context.Background(), user.ID, quests[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Read", completed.Title)
	assert.Equal(t, CompletionPoints, total)

	require.Len(t, rec.recorded, 1)
	assert.Equal(t, user.ID.String(), rec.recorded[0].UserID)
	assert.Equal(t, CompletionPoints, rec.recorded[0].Points)
}

func TestCompleteQuest_SecondCompletionDoesNotDoubleAward(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{batch: []models.QuestDraft{{Title: "T", Description: "D"}}}
	rec := &fakeRecorder{}
	svc := NewQuestService(st, gen, rec)
	user := testUser()

	quests, err := svc.EnsureTodaysQuests(context.Background(), user, today())
	require.NoError(t, err)

	_, total, err := svc.CompleteQuest(context.Background(), user.ID, quests[0].ID)
	require.NoError(t, err)
	assert.Equal(t, CompletionPoints, total)

	_, _, err = svc.CompleteQuest(context.Background(), user.ID, quests[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, CompletionPoints, st.points, "points must be awarded exactly once")
	assert.Len(t, rec.recorded, 1, "a failed completion must not be recorded")
}

func TestCompleteQuest_OtherUsersChallengeNotFound(t *testing.T) {
	t.Parallel()

	st := &fakeQuestStore{}
	gen := &fakeGenerator{batch: []models.QuestDraft{{Title: "T", Description: "D"}}}
	svc := NewQuestService(st, gen, nil)
	owner := testUser()

	quests, err := svc.EnsureTodaysQuests(context.Background(), owner, today())
	require.NoError(t, err)

	_, _, err = svc.CompleteQuest(context.Background(), uuid.New(), quests[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
