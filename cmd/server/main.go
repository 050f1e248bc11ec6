package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/dailyquest-app/dailyquest-backend/internal/config"
	"github.com/dailyquest-app/dailyquest-backend/internal/database"
	"github.com/dailyquest-app/dailyquest-backend/internal/generator"
	"github.com/dailyquest-app/dailyquest-backend/internal/handlers"
	"github.com/dailyquest-app/dailyquest-backend/internal/middleware"
	"github.com/dailyquest-app/dailyquest-backend/internal/routes"
	"github.com/dailyquest-app/dailyquest-backend/internal/services"
	"github.com/dailyquest-app/dailyquest-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.OpenAIAPIKey == "" {
		log.Println("⚠️  WARNING: OPENAI_API_KEY not set. Quest generation will fail and the dashboard will fall back to an empty quest list.")
	}

	// Connect to PostgreSQL (users + challenges)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, rate limiting, leaderboard events)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (quest completion history)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := services.EnsureCompletionIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB completion indexes: %v", err)
	} else {
		log.Println("✅ MongoDB completion indexes ensured")
	}

	// Initialize Cloudinary (optional: avatar uploads)
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Avatar uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Avatar uploads will not be available")
	}

	// Construct the core once at startup; these are never mutated mid-request.
	userStore := store.New(database.PostgresDB)
	questGenerator := generator.New(generator.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})
	questService := services.NewQuestService(userStore, questGenerator, services.CompletionLog{})
	handlers.Init(userStore, questService)

	// Fan leaderboard events out to local WebSocket clients.
	services.StartLeaderboardSubscriber(context.Background())

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.GlobalRateLimit)
	r.Use(middleware.AuthRateLimit)
	if cfg.IsProduction() {
		r.Use(middleware.RateLimitMiddleware)
	}

	routes.SetupRoutes(r)

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
