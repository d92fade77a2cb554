package router

import (
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pulsegram/backend/internal/cache"
	"github.com/pulsegram/backend/internal/handlers"
	"github.com/pulsegram/backend/internal/middleware"
	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/realtime"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/services"
	"github.com/pulsegram/backend/pkg/config"
	"github.com/pulsegram/backend/pkg/firebase"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(middleware.NewRateLimiter().RateLimit())
	log.Println("Global middleware configured.")
}

// Dependencies bundles the external clients SetupRoutes wires together.
type Dependencies struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Redis    *redis.Client
	Firebase *firebase.App
	Config   *config.Config
	Hub      *realtime.Hub
	Bridge   *realtime.Bridge
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps *Dependencies) {
	// AutoMigrate PostgreSQL models
	err := deps.Postgres.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Notification{},
		&models.NotificationPreferences{},
		&models.TokenLimit{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)
	preferenceRepo := repositories.NewPostgresPreferenceRepository(deps.Postgres)
	tokenRepo := repositories.NewPostgresTokenRepository(deps.Postgres)

	var usageRepo repositories.UsageRepository
	if deps.Mongo != nil {
		usageRepo = repositories.NewMongoUsageRepository(deps.Mongo.Database("pulsegram"))
	}

	// --- Services ---
	var push services.PushSender
	if deps.Firebase != nil && deps.Firebase.MessagingClient != nil {
		push = services.NewFCMPushSender(deps.Firebase.MessagingClient)
	}
	var email services.EmailSender
	if deps.Config.SMTPHost != "" {
		email = services.NewSMTPEmailSender(deps.Config.SMTPHost, deps.Config.SMTPPort, deps.Config.SMTPUser, deps.Config.SMTPPass, deps.Config.SMTPFrom)
	}

	dispatcher := services.NewDispatcher(preferenceRepo, userRepo, push, email)

	var bridge realtime.Publisher
	if deps.Bridge != nil {
		bridge = deps.Bridge
	}
	notifier := services.NewNotifier(notificationRepo, userRepo, bridge, dispatcher)
	ledger := services.NewLedger(tokenRepo, usageRepo)

	userCache := cache.New(deps.Config.UserCacheSize, time.Duration(deps.Config.UserCacheTTLSeconds)*time.Second)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, deps.Firebase.AuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	api.GET("/users/search", userHandler.SearchUsers)
	log.Println("User profile routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notifier)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo, notifier, userCache)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Preference routes
	preferenceHandler := handlers.NewPreferenceHandler(preferenceRepo)
	preferenceHandler.RegisterPreferenceRoutes(api)
	log.Println("Preference routes configured.")

	// Token ledger routes
	tokenHandler := handlers.NewTokenHandler(ledger, notifier)
	tokenHandler.RegisterTokenRoutes(api)
	log.Println("Token ledger routes configured.")

	// Real-time relay
	if deps.Hub != nil {
		wsHandler := handlers.NewWSHandler(deps.Hub)
		wsHandler.RegisterWSRoutes(api)
		log.Println("WebSocket relay routes configured.")
	}

	log.Println("All routes configured.")
}
