package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dailyquest-app/dailyquest-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/logout", handlers.Logout)
	r.Get("/api/auth/me", handlers.GetMe)

	// Profile routes
	r.Get("/api/profile", handlers.GetProfile)
	r.Put("/api/profile", handlers.UpdateProfile)
	r.Post("/api/profile/avatar", handlers.UploadAvatar)

	// Daily quest routes (dashboard)
	r.Get("/api/quests/today", handlers.GetTodaysQuests)
	r.Post("/api/quests/complete", handlers.CompleteQuest)
	r.Get("/api/quests/history", handlers.GetQuestHistory)

	// Leaderboard
	r.Get("/api/leaderboard", handlers.GetLeaderboard)

	// WebSocket endpoint for live leaderboard updates
	r.Get("/ws/leaderboard", handlers.LeaderboardWebSocket)
}
