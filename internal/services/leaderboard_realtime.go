package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/dailyquest-app/dailyquest-backend/internal/database"
)

// LeaderboardEvent is broadcast over Redis and WebSocket whenever a user's
// score changes. Delivery is best-effort; clients re-fetch the leaderboard
// for an authoritative view.
type LeaderboardEvent struct {
	Type       string    `json:"type"` // "score_change"
	Username   string    `json:"username"`
	Points     int       `json:"points"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	QuestTitle string    `json:"quest_title,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventTypeScoreChange is the only event type currently published.
const EventTypeScoreChange = "score_change"

const leaderboardChannel = "leaderboard:events"

// leaderboardHub fans events out to local WebSocket subscribers. Events
// arrive from the Redis subscriber so every instance sees every change.
type leaderboardHub struct {
	mu          sync.Mutex
	subscribers map[int]chan LeaderboardEvent
	nextID      int
}

var (
	lbHub        = &leaderboardHub{subscribers: make(map[int]chan LeaderboardEvent)}
	lbSubStarted sync.Once
)

// SubscribeLeaderboard registers a local subscriber and returns its event
// channel plus an unsubscribe func. The channel is buffered; slow consumers
// drop events rather than block the hub.
func SubscribeLeaderboard() (<-chan LeaderboardEvent, func()) {
	ch := make(chan LeaderboardEvent, 16)

	lbHub.mu.Lock()
	id := lbHub.nextID
	lbHub.nextID++
	lbHub.subscribers[id] = ch
	lbHub.mu.Unlock()

	unsubscribe := func() {
		lbHub.mu.Lock()
		if existing, ok := lbHub.subscribers[id]; ok {
			delete(lbHub.subscribers, id)
			close(existing)
		}
		lbHub.mu.Unlock()
	}
	return ch, unsubscribe
}

func fanOutLeaderboardEvent(event LeaderboardEvent) {
	lbHub.mu.Lock()
	defer lbHub.mu.Unlock()

	for _, ch := range lbHub.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is not keeping up; drop the event.
		}
	}
}

// StartLeaderboardSubscriber ensures a single shared Redis listener per
// instance.
func StartLeaderboardSubscriber(ctx context.Context) {
	lbSubStarted.Do(func() {
		go runLeaderboardSubscriber(ctx)
	})
}

func runLeaderboardSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; leaderboard subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.Subscribe(ctx, leaderboardChannel)
			defer pubsub.Close()

			log.Printf("✅ Leaderboard Redis subscriber started (channel: %s)", leaderboardChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event LeaderboardEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal leaderboard event: %v", err)
					continue
				}

				fanOutLeaderboardEvent(event)
			}
		}()
	}
}

// PublishLeaderboardEvent publishes a score change to Redis; called after a
// quest completion commits.
func PublishLeaderboardEvent(ctx context.Context, event LeaderboardEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, leaderboardChannel, data).Err()
}
