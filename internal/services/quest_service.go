package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dailyquest-app/dailyquest-backend/internal/generator"
	"github.com/dailyquest-app/dailyquest-backend/internal/models"
)

// CompletionPoints is awarded for each completed quest.
const CompletionPoints = 10

// QuestStore is the slice of the relational store the quest service needs.
type QuestStore interface {
	FindTodaysChallenges(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.Challenge, error)
	InsertChallenges(ctx context.Context, userID uuid.UUID, category string, day time.Time, batch []models.QuestDraft) error
	CompleteChallenge(ctx context.Context, challengeID, userID uuid.UUID, points int) (models.Challenge, int, error)
}

// QuestGenerator produces a batch of quest drafts for a category and level.
type QuestGenerator interface {
	Generate(ctx context.Context, category, level string) ([]models.QuestDraft, error)
}

// CompletionRecorder appends completed quests to the audit log. Recording is
// fire-and-forget; quest state lives in the relational store regardless.
type CompletionRecorder interface {
	RecordCompletionAsync(QuestCompletion)
}

// QuestService orchestrates the daily quest flow: ensure today's batch
// exists, and award points on completion. Dependencies are injected at
// construction and never mutated afterwards; the current date is always
// supplied by the caller.
type QuestService struct {
	store     QuestStore
	generator QuestGenerator
	recorder  CompletionRecorder // optional
}

func NewQuestService(store QuestStore, gen QuestGenerator, recorder CompletionRecorder) *QuestService {
	return &QuestService{store: store, generator: gen, recorder: recorder}
}

// IsGenerationError reports whether err came from the generation provider
// (either a failed call or an unusable response). Such errors are recovered
// into an empty dashboard with a notice, never a failed request.
func IsGenerationError(err error) bool {
	return errors.Is(err, generator.ErrProvider) || errors.Is(err, generator.ErrMalformedResponse)
}

// EnsureTodaysQuests returns the user's quests for the given day, generating
// and persisting a fresh batch when none exist yet.
//
// Repeated calls within the same day are idempotent: once a batch exists the
// generator is never invoked again. When generation fails nothing is
// persisted and the generation error is returned alongside an empty set, so
// the next request re-attempts from scratch — failure is never memoized.
func (s *QuestService) EnsureTodaysQuests(ctx context.Context, user models.User, today time.Time) ([]models.Challenge, error) {
	quests, err := s.store.FindTodaysChallenges(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}
	if len(quests) > 0 {
		return quests, nil
	}

	batch, err := s.generator.Generate(ctx, user.MainCategory, user.UserLevel)
	if err != nil {
		return []models.Challenge{}, err
	}
	if len(batch) == 0 {
		// The provider validly returned zero quests; nothing to persist.
		return []models.Challenge{}, nil
	}

	// The category is snapshotted from the profile at generation time.
	if err := s.store.InsertChallenges(ctx, user.ID, user.MainCategory, today, batch); err != nil {
		return nil, fmt.Errorf("persist daily batch: %w", err)
	}

	// Re-query so the caller sees exactly what was persisted (including a
	// concurrent batch that may have won the insert race).
	return s.store.FindTodaysChallenges(ctx, user.ID, today)
}

// CompleteQuest deletes the challenge, credits CompletionPoints to the user,
// and appends the completion to the audit log. Returns store.ErrNotFound via
// the underlying store when the challenge was already completed, so calling
// it twice cannot double-award points.
func (s *QuestService) CompleteQuest(ctx context.Context, userID, challengeID uuid.UUID) (models.Challenge, int, error) {
	completed, newPoints, err := s.store.CompleteChallenge(ctx, challengeID, userID, CompletionPoints)
	if err != nil {
		return models.Challenge{}, 0, err
	}

	if s.recorder != nil {
		s.recorder.RecordCompletionAsync(QuestCompletion{
			UserID:      userID.String(),
			Title:       completed.Title,
			Description: completed.Description,
			Category:    completed.Category,
			Points:      CompletionPoints,
			CompletedAt: time.Now().UTC(),
		})
	}

	return completed, newPoints, nil
}
