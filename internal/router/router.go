package router

import (
	"log"
	"net/http"

	"github.com/Safa-Alshukaili/mini-pro/internal/handlers"
	"github.com/Safa-Alshukaili/mini-pro/internal/middleware"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
)

// Dependencies are the stores and settings the routes are built from
type Dependencies struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Follows       repositories.FollowRepository
	Notifications repositories.NotificationRepository

	// FirebaseAuth is optional; without it Firebase login answers 503
	FirebaseAuth handlers.TokenVerifier

	JWTSecret    string
	AuthRequired bool
	UploadDir    string
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "The server is up and running!")
	})
	if deps.UploadDir != "" {
		e.Static(handlers.UploadURLPrefix, deps.UploadDir)
	}

	// --- Services ---
	notifier := services.NewNotifier(deps.Notifications)
	assembler := services.NewAssembler(deps.Posts, deps.Users, deps.Comments)
	postService := services.NewPostService(deps.Posts, deps.Users, deps.Comments, assembler)
	repostService := services.NewRepostService(deps.Posts, deps.Users, assembler, notifier)
	likeService := services.NewLikeService(deps.Posts, deps.Users, assembler, notifier)
	commentService := services.NewCommentService(deps.Posts, deps.Users, deps.Comments, notifier)
	feedService := services.NewFeedService(deps.Posts, deps.Follows, assembler)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(deps.Users, deps.FirebaseAuth, deps.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret, deps.AuthRequired))
	log.Printf("JWT authentication middleware applied to /api/v1 group (required=%t).", deps.AuthRequired)

	postHandler := handlers.NewPostHandler(postService, repostService, feedService, deps.UploadDir)
	postHandler.RegisterPostRoutes(api)

	feedHandler := handlers.NewFeedHandler(feedService)
	feedHandler.RegisterFeedRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeService)
	likeHandler.RegisterLikeRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentService)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Post routes configured.")

	userHandler := handlers.NewUserHandler(deps.Users, deps.Follows, postService, feedService, deps.UploadDir)
	userHandler.RegisterUserRoutes(api)

	followHandler := handlers.NewFollowHandler(deps.Follows, deps.Users, notifier)
	followHandler.RegisterFollowRoutes(api)
	log.Println("User routes configured.")

	notificationHandler := handlers.NewNotificationHandler(deps.Notifications, deps.Users)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
