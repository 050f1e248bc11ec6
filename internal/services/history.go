package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dailyquest-app/dailyquest-backend/internal/database"
)

// QuestCompletion is one append-only audit record of a completed quest. The
// relational challenge row is deleted on completion; this log is what keeps a
// user's points total reconcilable with what they actually did.
type QuestCompletion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Points      int                `bson:"points" json:"points"`
	CompletedAt time.Time          `bson:"completed_at" json:"completed_at"`
}

const completionsCollection = "quest_completions"

// EnsureCompletionIndexes configures indexes for the quest_completions
// collection. Called on startup from main after Mongo has connected.
func EnsureCompletionIndexes(ctx context.Context) error {
	col := database.DB.Collection(completionsCollection)

	// Compound index on (user_id, completed_at) for per-user history paging.
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "completed_at", Value: -1},
		},
		Options: options.Index().SetName("idx_user_completed"),
	})
	return err
}

// CompletionLog records completions in MongoDB. The zero value is ready to
// use once the Mongo connection is up.
type CompletionLog struct{}

// RecordCompletionAsync persists an audit record without blocking the
// completion request; a lost record never affects quest state or points.
func (CompletionLog) RecordCompletionAsync(c QuestCompletion) {
	go func(rec QuestCompletion) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if rec.CompletedAt.IsZero() {
			rec.CompletedAt = time.Now().UTC()
		}

		col := database.DB.Collection(completionsCollection)
		_, _ = col.InsertOne(ctx, rec)
	}(c)
}

// LoadCompletions returns paginated completion history for a user,
// newest-first. The before cursor excludes records at or after it.
func LoadCompletions(ctx context.Context, userID string, before *time.Time, limit int64) ([]QuestCompletion, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.DB.Collection(completionsCollection)

	filter := bson.M{"user_id": userID}
	if before != nil {
		filter["completed_at"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var records []QuestCompletion
	for cur.Next(ctx) {
		var rec QuestCompletion
		if err := cur.Decode(&rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(records)) > limit
	if hasMore {
		records = records[:len(records)-1]
	}
	return records, hasMore, nil
}
