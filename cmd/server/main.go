package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/NewMtnGoat/new-status/internal/config"
	"github.com/NewMtnGoat/new-status/internal/database"
	"github.com/NewMtnGoat/new-status/internal/gemini"
	"github.com/NewMtnGoat/new-status/internal/handlers"
	"github.com/NewMtnGoat/new-status/internal/repository"
	cron "github.com/NewMtnGoat/new-status/internal/scheduler"
	"github.com/NewMtnGoat/new-status/internal/services"
	"github.com/NewMtnGoat/new-status/pkg/logger"
	"github.com/NewMtnGoat/new-status/pkg/middleware"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Redis carries stream events across instances. A single instance
	// still works without it, so a connection failure only degrades to
	// local-only delivery.
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Log.Warnf("Redis unavailable, stream events stay in-process: %v", err)
		rdb = nil
	}

	// --- Repositories ---
	profileRepo := repository.NewProfileRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	notificationRepo := repository.NewNotificationRepository(db, cfg.NotificationRetention)
	journalRepo := repository.NewJournalRepository(db)

	// --- Stream hub ---
	hub := services.NewHub(rdb, notificationRepo, cfg.NotificationTTL)
	go hub.Run(context.Background())

	// --- Generative bridge ---
	bridge := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})

	// --- Services ---
	profileService := services.NewProfileService(profileRepo)
	circleService := services.NewCircleService(profileRepo)
	notificationService := services.NewNotificationService(notificationRepo, hub)
	alertService := services.NewAlertService(alertRepo, notificationService, hub)
	journalService := services.NewJournalService(journalRepo, bridge)
	companionService := services.NewCompanionService(bridge)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(profileService, cfg)
	profileHandler := handlers.NewProfileHandler(profileService, hub)
	circleHandler := handlers.NewCircleHandler(circleService, hub)
	alertHandler := handlers.NewAlertHandler(alertService, profileService, hub)
	notificationHandler := handlers.NewNotificationHandler(notificationService, profileService, hub)
	journalHandler := handlers.NewJournalHandler(journalService, hub)
	companionHandler := handlers.NewCompanionHandler(companionService, hub)
	streamHandler := handlers.NewStreamHandler(hub, cfg.JWTSecret)

	// Start the expired-notification sweep
	cron.StartNotificationCronJobs(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Auth routes are the only unauthenticated endpoints
	router.HandleFunc("/auth/anonymous", authHandler.AnonymousSignInHandler).Methods("POST")
	router.HandleFunc("/auth/token", authHandler.TokenSignInHandler).Methods("POST")

	// Websocket stream authenticates via its token query parameter
	router.HandleFunc("/stream", streamHandler.ServeStream).Methods("GET")

	// Profile routes
	profileRoutes := router.PathPrefix("/profile").Subrouter()
	profileRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	profileRoutes.HandleFunc("", profileHandler.GetProfileHandler).Methods("GET")
	profileRoutes.HandleFunc("", profileHandler.UpdateProfileHandler).Methods("PATCH")
	profileRoutes.HandleFunc("/status", profileHandler.UpdateStatusHandler).Methods("PUT")
	profileRoutes.HandleFunc("/upgrade", profileHandler.UpgradeHandler).Methods("POST")

	// Circle routes
	circleRoutes := router.PathPrefix("/circle").Subrouter()
	circleRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	circleRoutes.HandleFunc("", circleHandler.AddMemberHandler).Methods("POST")
	circleRoutes.HandleFunc("", circleHandler.GetCircleHandler).Methods("GET")
	circleRoutes.HandleFunc("/statuses", circleHandler.GetCircleStatusesHandler).Methods("GET")
	circleRoutes.HandleFunc("/{id}", circleHandler.RemoveMemberHandler).Methods("DELETE")

	// Alert routes
	alertRoutes := router.PathPrefix("/alerts").Subrouter()
	alertRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	alertRoutes.HandleFunc("", alertHandler.SendAlertHandler).Methods("POST")
	alertRoutes.HandleFunc("/incoming", alertHandler.GetIncomingAlertsHandler).Methods("GET")
	alertRoutes.HandleFunc("/crisis", alertHandler.GetCrisisAlertHandler).Methods("GET")
	alertRoutes.HandleFunc("/{id}/respond", alertHandler.RespondToAlertHandler).Methods("POST")
	alertRoutes.HandleFunc("/{id}/resolve", alertHandler.ResolveAlertHandler).Methods("POST")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/check-in", notificationHandler.SendCheckInHandler).Methods("POST")
	notificationRoutes.HandleFunc("/wellbeing", notificationHandler.SendWellbeingRequestHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Journal routes; asking the journal is a premium feature
	journalRoutes := router.PathPrefix("/journal").Subrouter()
	journalRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	journalRoutes.HandleFunc("", journalHandler.CreateEntryHandler).Methods("POST")
	journalRoutes.HandleFunc("", journalHandler.GetEntriesHandler).Methods("GET")

	journalPremiumRoutes := router.PathPrefix("/journal").Subrouter()
	journalPremiumRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	journalPremiumRoutes.Use(middleware.RequirePremium(profileService))
	journalPremiumRoutes.HandleFunc("/ask", journalHandler.AskJournalHandler).Methods("POST")

	// Companion routes; the open-ended chat is premium, the targeted
	// helpers (drafts, responder guidance, grounding) are not
	companionRoutes := router.PathPrefix("/companion").Subrouter()
	companionRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	companionRoutes.HandleFunc("/draft", companionHandler.DraftCheckInHandler).Methods("POST")
	companionRoutes.HandleFunc("/guidance", companionHandler.CrisisGuidanceHandler).Methods("POST")
	companionRoutes.HandleFunc("/grounding", companionHandler.GroundingExerciseHandler).Methods("POST")

	companionPremiumRoutes := router.PathPrefix("/companion").Subrouter()
	companionPremiumRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	companionPremiumRoutes.Use(middleware.RequirePremium(profileService))
	companionPremiumRoutes.HandleFunc("/chat", companionHandler.ChatHandler).Methods("POST")

	// Logging middleware for every request
	router.Use(middleware.LoggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Log.Infof("Server running on port %s", cfg.Port)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
