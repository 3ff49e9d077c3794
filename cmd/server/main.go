package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamvtyagi/99acres/internal/config"
	"github.com/iamvtyagi/99acres/internal/database"
	"github.com/iamvtyagi/99acres/internal/handlers"
	"github.com/iamvtyagi/99acres/internal/jobs"
	"github.com/iamvtyagi/99acres/internal/relay"
	"github.com/iamvtyagi/99acres/internal/repository"
	"github.com/iamvtyagi/99acres/internal/scheduler"
	"github.com/iamvtyagi/99acres/internal/services"
	"github.com/iamvtyagi/99acres/pkg/email"
	"github.com/iamvtyagi/99acres/pkg/logger"
	"github.com/iamvtyagi/99acres/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Log.Fatalf("Failed to create indexes: %v", err)
	}
	tx := database.NewTransactor(db.Client(), cfg.UseTransactions)

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)

	var mailer email.Sender = email.NoopMailer{}
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender)
	}

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo)
	userService := services.NewUserService(userRepo)
	messagingService := services.NewMessagingService(conversationRepo, messageRepo, userRepo, notificationService, tx)
	propertyService := services.NewPropertyService(propertyRepo, userRepo)
	leadService := services.NewLeadService(leadRepo, propertyRepo, userRepo, notificationService, mailer)
	wishlistService := services.NewWishlistService(wishlistRepo, propertyRepo)

	// --- Relay ---
	var backplane relay.Backplane
	if cfg.RedisURL != "" {
		bp, err := relay.NewRedisBackplane(ctx, cfg.RedisURL, relay.DefaultChannel)
		if err != nil {
			logger.Log.Fatalf("Relay backplane error: %v", err)
		}
		defer bp.Close()
		backplane = bp
	}
	hub := relay.NewHub(backplane)
	if err := hub.Start(ctx); err != nil {
		logger.Log.Fatalf("Failed to start relay: %v", err)
	}

	// --- Jobs ---
	cronJobs, err := scheduler.StartCronJobs(cfg.ReconcileCron, jobs.NewUnreadReconciler(messagingService))
	if err != nil {
		logger.Log.Fatalf("Invalid cron schedule: %v", err)
	}
	defer cronJobs.Stop()

	// --- Handlers ---
	router := handlers.NewRouter(&handlers.Handlers{
		User:         handlers.NewUserHandler(userService, cfg),
		Property:     handlers.NewPropertyHandler(propertyService),
		Lead:         handlers.NewLeadHandler(leadService),
		Wishlist:     handlers.NewWishlistHandler(wishlistService),
		Message:      handlers.NewMessageHandler(messagingService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Relay:        handlers.NewRelayHandler(hub, cfg.JWTSecret, cfg.AllowedOrigins),
	}, cfg.JWTSecret)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	var handler http.Handler = router
	if cfg.RateLimitRPS > 0 {
		handler = middleware.NewRateLimiter(cfg.RateLimitRPS).Middleware(router)
	} else {
		logger.Log.Warn("Rate limiting disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("Mongo disconnect failed")
	}
}
