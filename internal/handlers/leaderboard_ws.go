package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dailyquest-app/dailyquest-backend/internal/services"
)

var leaderboardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// LeaderboardWebSocket streams score-change events to the client. The stream
// is best-effort: clients should fetch /api/leaderboard for the full ranking
// and use events to refresh it.
//
// Authentication uses the existing session token (Authorization: Bearer
// <token>, or ?token= for browser WebSocket clients).
func LeaderboardWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
	}
	if _, ok, err := services.ValidateSession(token); err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	conn, err := leaderboardUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	eventsCh, unsubscribe := services.SubscribeLeaderboard()
	defer unsubscribe()

	// Writer: forward hub events to this connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range eventsCh {
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}()

	// Reader: the client sends nothing meaningful; keep the connection alive
	// and detect disconnects.
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}

	unsubscribe()
	<-done
}
