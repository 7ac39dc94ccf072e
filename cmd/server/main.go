package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/openboard/notifier/internal/apns"
	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/push"
	"github.com/openboard/notifier/internal/router"
	"github.com/openboard/notifier/pkg/config"
	"github.com/openboard/notifier/pkg/firebase"
	"github.com/openboard/notifier/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// APNs provider credentials and client
	keyPEM, err := cfg.APNSKeyPEM()
	if err != nil {
		log.Fatalf("Failed to load APNs key: %v", err)
	}
	tokens, err := apns.NewTokenSource(cfg.APNSKeyID, cfg.APNSTeamID, keyPEM)
	if err != nil {
		log.Fatalf("Failed to initialize APNs token source: %v", err)
	}
	senders := map[string]push.Sender{
		models.PlatformIOS: apns.NewClient(tokens, cfg.APNSBundleID, cfg.APNSEnv, zlog),
	}

	// Firebase is optional; without it android devices are skipped.
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		senders[models.PlatformAndroid] = push.NewFCMSender(firebaseApp.MessagingClient, zlog)
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, android delivery disabled.")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, senders, cfg, zlog)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
