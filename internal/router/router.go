package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openboard/notifier/internal/events"
	"github.com/openboard/notifier/internal/handlers"
	"github.com/openboard/notifier/internal/middleware"
	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/push"
	"github.com/openboard/notifier/internal/repositories"
	"github.com/openboard/notifier/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, senders map[string]push.Sender, cfg *config.Config, zlog *zap.Logger) {
	// AutoMigrate the tables this service owns. Users, posts, likes and
	// comments belong to the main backend and are only read here.
	err := pgdb.AutoMigrate(
		&models.Notification{},
		&models.DeviceToken{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for owned models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewPostgresPostRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	deviceRepo := repositories.NewPostgresDeviceTokenRepository(pgdb)

	var deliveryLog repositories.DeliveryLogRepository
	if mgClient != nil {
		deliveryLog = repositories.NewMongoDeliveryLogRepository(mgClient.Database("notifier"))
	}

	// --- Event pipeline ---
	eventHandlers := events.NewHandlers(userRepo, postRepo, notificationRepo, deviceRepo, deliveryLog, senders)
	dispatcher := events.NewDispatcher(eventHandlers, zlog)

	// --- Webhook routes (CDC trigger, shared-secret protected) ---
	webhookGroup := e.Group("/webhooks")
	webhookGroup.Use(middleware.WebhookAuthMiddleware(cfg.WebhookSecret))
	webhookHandler := handlers.NewWebhookHandler(dispatcher)
	webhookHandler.RegisterWebhookRoutes(webhookGroup)
	log.Println("Webhook routes configured.")

	// --- Protected client routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Device routes
	deviceHandler := handlers.NewDeviceHandler(deviceRepo)
	deviceHandler.RegisterDeviceRoutes(api)
	log.Println("Device routes configured.")

	log.Println("All routes configured.")
}
