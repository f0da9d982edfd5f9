package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Safa-Alshukaili/mini-pro/internal/metrics"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/Safa-Alshukaili/mini-pro/internal/router"
	"github.com/Safa-Alshukaili/mini-pro/pkg/config"
	"github.com/Safa-Alshukaili/mini-pro/pkg/firebase"
	"github.com/Safa-Alshukaili/mini-pro/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate databases: %v", err)
	}

	deps := router.Dependencies{
		Users:         repositories.NewPostgresUserRepository(db.Postgres),
		Posts:         repositories.NewMongoPostRepository(db.MongoDB),
		Comments:      repositories.NewPostgresCommentRepository(db.Postgres),
		Follows:       repositories.NewPostgresFollowRepository(db.Postgres),
		Notifications: repositories.NewPostgresNotificationRepository(db.Postgres),
		JWTSecret:     cfg.JWTSecret,
		AuthRequired:  cfg.AuthRequired,
		UploadDir:     cfg.UploadDir,
	}

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	if firebaseApp != nil {
		deps.FirebaseAuth = firebaseApp.AuthClient
	}

	metricsServer, err := metrics.NewHTTPServer(":" + cfg.MetricsPort)
	if err != nil {
		log.Fatalf("Failed to start metrics server: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg)
	router.SetupRoutes(e, deps)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics server: %v", err)
	}
}
